/*
Package sys hides the differences between the platforms' socket and event
facilities.

Link-layer addresses are exposed under one name on every platform: AF_LINK is
the packet family on Linux and the native link family on BSD systems, and
SockaddrDl is the matching raw socket address structure (sockaddr_ll on Linux,
sockaddr_dl on BSD). On Linux the package also surfaces epoll, sendfile,
ioctl and inotify; darwin and freebsd get kqueue for both sockets and vnode
notifications.
*/
package sys
