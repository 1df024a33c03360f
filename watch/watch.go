// Package watch reports changes of individual files.
package watch

import (
	"strings"

	"github.com/moqsien/processes/logger"

	"github.com/moqsien/sxnet/utils/errs"
)

type Events uint32

const (
	Deleted Events = 1 << iota
	Written
	SizeChanged
	PermissionChanged
	Linked
	Renamed
	Revoked

	All = Deleted | Written | SizeChanged | PermissionChanged | Linked | Renamed | Revoked
)

var eventNames = []struct {
	ev   Events
	name string
}{
	{Deleted, "deleted"},
	{Written, "written"},
	{SizeChanged, "size_changed"},
	{PermissionChanged, "permission_changed"},
	{Linked, "linked"},
	{Renamed, "renamed"},
	{Revoked, "revoked"},
}

func (that Events) String() string {
	if that == 0 {
		return "none"
	}
	var names []string
	for _, n := range eventNames {
		if that&n.ev != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseEvents reads a list such as "written,deleted", an empty list means All.
func ParseEvents(list []string) (ev Events) {
	for _, s := range list {
		for _, n := range eventNames {
			if strings.EqualFold(strings.TrimSpace(s), n.name) {
				ev |= n.ev
			}
		}
	}
	if ev == 0 {
		ev = All
	}
	return
}

// Callback receives the subscribed events of path. Returning true stops watching path.
type Callback func(path string, ev Events) (stop bool)

type Watcher interface {
	// Monitor subscribes cb to events of path, a second call for the same path replaces the first.
	Monitor(path string, events Events, cb Callback) error
	Remove(path string) error
	// Run dispatches events until Close is called.
	Run() error
	Close() error
}

func doWatchErr(err error) error {
	switch err {
	case nil:
		return nil
	case errs.ErrWatcherClosed:
		return err
	default:
		logger.Warningf("error occurs in file watcher: %v", err)
		return nil
	}
}
