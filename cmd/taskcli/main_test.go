package main

import (
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskminder/taskminder/internal/client"
	"github.com/taskminder/taskminder/internal/dto"
	"github.com/taskminder/taskminder/internal/models"
	"github.com/taskminder/taskminder/internal/reminder"
)

func editFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.String("title", "", "")
	fs.String("desc", "", "")
	fs.String("priority", "", "")
	fs.String("due", "", "")
	fs.String("remind", "", "")
	return fs
}

func TestUpdateFields_OnlyPassedFlags(t *testing.T) {
	fs := editFlagSet()
	require.NoError(t, fs.Parse([]string{"-title", "New title", "-priority", "High"}))

	fields, err := updateFields(fs)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"title":    "New title",
		"priority": "High",
	}, fields)
}

func TestUpdateFields_NoneClearsTimestamps(t *testing.T) {
	fs := editFlagSet()
	require.NoError(t, fs.Parse([]string{"-due", "none", "-remind", "none"}))

	fields, err := updateFields(fs)
	require.NoError(t, err)

	// An explicit null in the body clears the field server-side
	due, ok := fields["due_date"]
	require.True(t, ok)
	assert.Nil(t, due)
	rem, ok := fields["reminder"]
	require.True(t, ok)
	assert.Nil(t, rem)
}

func TestUpdateFields_ParsesReminderTime(t *testing.T) {
	fs := editFlagSet()
	require.NoError(t, fs.Parse([]string{"-remind", "2026-09-15T18:00:00Z"}))

	fields, err := updateFields(fs)
	require.NoError(t, err)

	want := time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC)
	got, ok := fields["reminder"].(time.Time)
	require.True(t, ok)
	assert.True(t, want.Equal(got))
}

func TestUpdateFields_InvalidTime(t *testing.T) {
	fs := editFlagSet()
	require.NoError(t, fs.Parse([]string{"-due", "tomorrow"}))

	_, err := updateFields(fs)
	assert.ErrorContains(t, err, "invalid -due")
}

func TestUpdateFields_NothingToUpdate(t *testing.T) {
	fs := editFlagSet()
	require.NoError(t, fs.Parse(nil))

	_, err := updateFields(fs)
	assert.ErrorContains(t, err, "nothing to update")
}

func testScanner(alerts *[]string) *reminder.Scanner {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return reminder.NewScanner(reminder.NewMemoryStore(), func(task models.Task) {
		*alerts = append(*alerts, task.Title)
	}, reminder.DefaultScanInterval, log)
}

func TestWatchOnce_ScansFetchedTasks(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]dto.TaskDTO{{ID: 1, Title: "Pay rent", Reminder: &past}})
	}))
	defer srv.Close()

	var alerts []string
	scanner := testScanner(&alerts)

	require.NoError(t, watchOnce(client.New(srv.URL), scanner))
	assert.Equal(t, []string{"Pay rent"}, alerts)
}

func TestWatchOnce_PropagatesUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var alerts []string
	err := watchOnce(client.New(srv.URL), testScanner(&alerts))
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Empty(t, alerts)
}
