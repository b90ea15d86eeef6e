// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the img2pdf stages:
// the manifest, page sizes, configuration and error classes.
package types

import "errors"

// Failure classes shared by every stage. Stages wrap the underlying cause
// together with one of these so callers can branch with errors.Is.
var (
	ErrIO         = errors.New("i/o error")
	ErrParse      = errors.New("malformed manifest")
	ErrInvalidURL = errors.New("invalid url")
	ErrNetwork    = errors.New("network error")
	ErrDecode     = errors.New("unsupported or corrupt image")
	ErrNoImages   = errors.New("no images to assemble")
)
