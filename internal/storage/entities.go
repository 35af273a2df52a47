package storage

import (
	"time"

	"github.com/sandeepkv93/neptune/internal/model"
)

type Entry struct {
	ID       int64
	Document string
	TaskID   model.ID
	Kind     string
	Text     string
	At       time.Time
}

type EntryFilter struct {
	Document string
	TaskID   model.ID
	Kind     string
	Since    time.Time
	Limit    int
	Offset   int
}
