// Package progress provides the event primitives, the synchronous
// broadcaster, and the emitter interface the scraper uses to report its
// run. Events fan out to pluggable sinks such as structured logs or
// Prometheus metrics.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageRunStart Stage = "RUN_START"
	StagePageDone Stage = "PAGE_DONE"
	StageRunDone  Stage = "RUN_DONE"
	StageRunError Stage = "RUN_ERROR"
)

// StatusClass is a coarse HTTP response grouping.
type StatusClass string

// Supported HTTP status classes tracked for page fetches.
const (
	Status2xx   StatusClass = "2xx"
	Status3xx   StatusClass = "3xx"
	Status4xx   StatusClass = "4xx"
	Status5xx   StatusClass = "5xx"
	StatusOther StatusClass = "other"
)

// Event captures one milestone of a scrape run.
type Event struct {
	// RunID uniquely identifies a scrape run using the 16-byte UUID form.
	RunID [16]byte
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Store is the storefront host label.
	Store string
	// Page is the 1-based page number for page events.
	Page int
	// Products counts the products on a page, or the run total for
	// completion events.
	Products int
	// Bytes carries the response size for a page fetch.
	Bytes int64
	// StatusClass groups the HTTP response code (2xx, 4xx, etc).
	StatusClass StatusClass
	// Dur captures latency for page fetches and whole runs.
	Dur time.Duration
	// Note lets emitters attach low-volume context (e.g. error text).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart:
		if e.Store == "" {
			return errors.New("run start requires store")
		}
	case StagePageDone:
		if e.Store == "" {
			return errors.New("page done requires store")
		}
		if e.Page < 1 {
			return errors.New("page done requires page >= 1")
		}
		if e.StatusClass == "" {
			return errors.New("page done requires status class")
		}
	case StageRunDone, StageRunError:
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID for logging.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}

// ClassifyStatus groups HTTP status codes for page events.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 300 && code < 400:
		return Status3xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	default:
		return StatusOther
	}
}
