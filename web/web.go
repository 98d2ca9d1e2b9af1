// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package web serves the HTML page with the user form.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/z5labs/userform/intake"
	"github.com/z5labs/userform/pkg/noop"
	"github.com/z5labs/userform/pkg/otelslog"
	"github.com/z5labs/userform/pkg/slogfield"
	"github.com/z5labs/userform/user"

	"github.com/google/uuid"
)

//go:embed templates/*.tmpl
var templates embed.FS

var formTemplate = template.Must(template.ParseFS(templates, "templates/form.html.tmpl"))

// Field is a single text input on the page.
type Field struct {
	// Name of the form field.
	Name string

	// Path of the schema property the field is validated as.
	Path string

	Placeholder string
}

// Page is the data the form template is rendered with.
type Page struct {
	Title  string
	Action string
	FormID string
	Fields []Field

	// Note is shown under the form when set.
	Note string
}

// AsIsNote explains why updatedAt is always rejected in intake.ModeAsIs.
const AsIsNote = "updatedAt is submitted as text and will be rejected. " +
	"Set intake.mode to symmetric (USERFORM_INTAKE__MODE=symmetric) to validate it as a date."

// DefaultFields are the five inputs of the user form.
var DefaultFields = []Field{
	{Name: intake.FormFieldID, Path: user.FieldID, Placeholder: "user id"},
	{Name: intake.FormFieldName, Path: user.FieldName, Placeholder: "user name"},
	{Name: intake.FormFieldEmail, Path: user.FieldEmail, Placeholder: "user email"},
	{Name: intake.FormFieldCreatedAt, Path: user.FieldCreatedAt, Placeholder: "user createdAt"},
	{Name: intake.FormFieldUpdatedAt, Path: user.FieldUpdatedAt, Placeholder: "user updatedAt"},
}

type options struct {
	logHandler slog.Handler
	title      string
	action     string
	newFormID  func() string
	mode       intake.Mode
}

// Option
type Option func(*options)

// LogHandler
func LogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.logHandler = h
	}
}

// Title of the page.
func Title(s string) Option {
	return func(o *options) {
		o.title = s
	}
}

// Action is the path the form is submitted to.
func Action(path string) Option {
	return func(o *options) {
		o.action = path
	}
}

// Mode is the intake mode submissions are validated with. The page
// shows AsIsNote unless it is intake.ModeSymmetric.
func Mode(m intake.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// FormIDs overrides how the id of each rendered form instance is generated.
func FormIDs(f func() string) Option {
	return func(o *options) {
		o.newFormID = f
	}
}

type handler struct {
	log       *slog.Logger
	title     string
	action    string
	newFormID func() string
	note      string
}

// NewHandler returns the [http.Handler] rendering the form page. Every
// render gets a fresh form id which the page sends back with its submissions.
func NewHandler(opts ...Option) http.Handler {
	o := &options{
		logHandler: noop.LogHandler{},
		title:      "userform",
		action:     "/users/parse",
		newFormID:  uuid.NewString,
		mode:       intake.ModeAsIs,
	}
	for _, opt := range opts {
		opt(o)
	}

	var note string
	if o.mode != intake.ModeSymmetric {
		note = AsIsNote
	}

	return &handler{
		log:       slog.New(otelslog.NewHandler(o.logHandler)),
		title:     o.title,
		action:    o.action,
		newFormID: o.newFormID,
		note:      note,
	}
}

// ServeHTTP implements the [http.Handler] interface.
func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page := Page{
		Title:  h.title,
		Action: h.action,
		FormID: h.newFormID(),
		Fields: DefaultFields,
		Note:   h.note,
	}

	var buf bytes.Buffer
	err := formTemplate.Execute(&buf, page)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to render form page", slogfield.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
