// Package calendar renders and reads iCalendar feeds of cleaning dates.
package calendar

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"
)

// ContentType is the media type of a rendered feed.
const ContentType = "text/calendar; charset=utf-8"

// maxLineOctets is the folding limit for content lines.
const maxLineOctets = 75

const dateFormat = "20060102"

// Event is an all-day calendar entry.
type Event struct {
	UID         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

// Write renders events as a VCALENDAR named name.
func Write(w io.Writer, name string, events []Event, stamp time.Time) error {
	bw := bufio.NewWriter(w)
	line := func(field, value string) {
		writeFolded(bw, field+":"+value)
	}

	line("BEGIN", "VCALENDAR")
	line("VERSION", "2.0")
	line("PRODID", "-//roomportal//cleaning//ES")
	line("CALSCALE", "GREGORIAN")
	line("METHOD", "PUBLISH")
	line("X-WR-CALNAME", escape(name))

	dtstamp := stamp.UTC().Format("20060102T150405Z")
	for _, e := range events {
		line("BEGIN", "VEVENT")
		line("UID", e.UID)
		line("DTSTAMP", dtstamp)
		line("DTSTART;VALUE=DATE", e.Start.Format(dateFormat))
		line("DTEND;VALUE=DATE", e.End.Format(dateFormat))
		line("SUMMARY", escape(e.Summary))
		if e.Description != "" {
			line("DESCRIPTION", escape(e.Description))
		}
		if e.Location != "" {
			line("LOCATION", escape(e.Location))
		}
		line("TRANSP", "TRANSPARENT")
		line("END", "VEVENT")
	}
	line("END", "VCALENDAR")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// writeFolded writes a content line split into chunks of at most
// maxLineOctets, never inside a UTF-8 sequence.
func writeFolded(w *bufio.Writer, s string) {
	limit := maxLineOctets
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		w.WriteString(s[:cut])
		w.WriteString("\r\n ")
		s = s[cut:]
		// Continuation lines spend one octet on the leading space.
		limit = maxLineOctets - 1
	}
	w.WriteString(s)
	w.WriteString("\r\n")
}

var escaper = strings.NewReplacer(
	"\\", "\\\\",
	";", "\\;",
	",", "\\,",
	"\r\n", "\\n",
	"\n", "\\n",
)

var unescaper = strings.NewReplacer(
	"\\\\", "\\",
	"\\;", ";",
	"\\,", ",",
	"\\n", "\n",
	"\\N", "\n",
)

func escape(s string) string {
	return escaper.Replace(s)
}

// Parse reads the VEVENTs of an iCalendar feed. Events without both dates
// are dropped.
func Parse(r io.Reader) ([]Event, error) {
	var events []Event
	var current *Event
	var lines []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		// Folded continuation
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if n := len(lines); n > 0 {
				lines[n-1] += line[1:]
			}
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}

	for _, line := range lines {
		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}
		field := line[:colonIdx]
		value := line[colonIdx+1:]

		// Drop parameters (e.g., DTSTART;VALUE=DATE)
		if semicolonIdx := strings.Index(field, ";"); semicolonIdx != -1 {
			field = field[:semicolonIdx]
		}

		switch field {
		case "BEGIN":
			if value == "VEVENT" {
				current = &Event{}
			}
		case "END":
			if value == "VEVENT" && current != nil {
				if !current.Start.IsZero() && !current.End.IsZero() {
					events = append(events, *current)
				}
				current = nil
			}
		default:
			if current != nil {
				setField(current, field, value)
			}
		}
	}

	return events, nil
}

func setField(e *Event, field, value string) {
	switch field {
	case "UID":
		e.UID = value
	case "SUMMARY":
		e.Summary = unescaper.Replace(value)
	case "DESCRIPTION":
		e.Description = unescaper.Replace(value)
	case "LOCATION":
		e.Location = unescaper.Replace(value)
	case "DTSTART":
		e.Start = parseDateTime(value)
	case "DTEND":
		e.End = parseDateTime(value)
	}
}

// parseDateTime parses an iCal date or datetime value.
func parseDateTime(value string) time.Time {
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		dateFormat,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
