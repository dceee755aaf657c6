package main

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidServeMode = errors.New("invalid serve mode")

type ServeMode string

const (
	ServeModeMonolith   ServeMode = "monolith"
	ServeModeWeb        ServeMode = "web"
	ServeModeDispatcher ServeMode = "dispatcher"
)

func ParseServeMode(rawInput string) (ServeMode, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawInput))
	if normalized == "" {
		return ServeModeMonolith, nil
	}

	mode := ServeMode(normalized)
	switch mode {
	case ServeModeMonolith, ServeModeWeb, ServeModeDispatcher:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidServeMode, rawInput)
	}
}

// servesSite reports whether the mode exposes the website and the contact API.
func (mode ServeMode) servesSite() bool {
	return mode == ServeModeMonolith || mode == ServeModeWeb
}

// servesDispatcher reports whether the mode exposes the notification endpoint.
func (mode ServeMode) servesDispatcher() bool {
	return mode == ServeModeMonolith || mode == ServeModeDispatcher
}
