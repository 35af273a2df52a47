package main

import (
	"github.com/spf13/pflag"

	"github.com/sandeepkv93/neptune/internal/model"
)

var _ pflag.Value = (*dueValue)(nil)

// dueValue parses --due relative to the moment the flag is set.
type dueValue struct {
	raw string
	due *model.DueDate
}

func (v *dueValue) String() string {
	if v == nil || v.due == nil {
		return ""
	}
	return v.due.String()
}

func (v *dueValue) Set(raw string) error {
	due, err := model.ParseDueInput(raw, nowFunc())
	if err != nil {
		return err
	}
	v.raw = raw
	v.due = due
	return nil
}

func (v *dueValue) Type() string { return "date" }
