package tui

import (
	"github.com/Veraticus/billwell/internal/model"
	"github.com/Veraticus/billwell/internal/view"
)

// Every load message carries the session it was started under. The model
// drops messages whose session is no longer current.

type overviewLoadedMsg struct {
	session  *view.Session
	snapshot *view.Snapshot
	err      error
}

type recordsLoadedMsg struct {
	session *view.Session
	err     error
	kind    model.Kind
	records []model.Record
}

type statusUpdatedMsg struct {
	session *view.Session
	err     error
	id      string
	status  string
}
