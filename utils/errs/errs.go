package errs

import "errors"

var (
	ErrAcceptSocket   = errors.New("accept a new connection error")
	ErrEngineShutdown = errors.New("server is going to be shutdown")
	ErrUnsupportedOp  = errors.New("unsupported operation")

	// link-layer and address errors
	ErrNotLinkFamily        = errors.New("sockaddr is not of the link-layer family")
	ErrShortSockaddr        = errors.New("sockaddr buffer is too short")
	ErrNonImplementedDomain = errors.New("socket domain is not implemented")
	ErrPathTooLong          = errors.New("unix socket path is too long")
	ErrNoAddress            = errors.New("no address was found")

	ErrWatcherClosed = errors.New("file watcher is closed")
	ErrNotWatched    = errors.New("path is not being watched")
)
