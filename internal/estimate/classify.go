package estimate

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// Kind is the content category a file is counted as.
type Kind string

const (
	KindScript Kind = "script"
	KindShell  Kind = "shell"
	KindBinary Kind = "binary"
)

const (
	mimeShell  = "text/x-shellscript"
	mimePython = "text/x-python"
)

var ErrUnsupportedType = errors.New("unsupported file type")

var (
	kindByMIME = []struct {
		mime string
		kind Kind
	}{
		{mimePython, KindScript},
		{mimeShell, KindShell},
		{"application/x-elf", KindBinary},
		{"application/x-mach-binary", KindBinary},
		{"application/vnd.microsoft.portable-executable", KindBinary},
	}

	// used when the content carries no shebang
	kindByExtension = map[string]Kind{
		".py":   KindScript,
		".sh":   KindShell,
		".bash": KindShell,
		".zsh":  KindShell,
	}

	shellInterpreter  = regexp.MustCompile(`^(sh|bash|zsh|dash|ksh)$`)
	pythonInterpreter = regexp.MustCompile(`^python[0-9.]*$`)

	registerDetectors sync.Once
)

// Classification is the outcome of Classify.
type Classification struct {
	Kind Kind
	MIME string
}

// Classify infers the content category of the file at path from its detected MIME type,
// falling back to the file extension for plain text. Files that fit no category return an
// error wrapping ErrUnsupportedType.
func Classify(path string) (Classification, error) {
	registerDetectors.Do(func() {
		text := mimetype.Lookup("text/plain")
		text.Extend(shebangDetector(shellInterpreter), mimeShell, ".sh", "application/x-sh")
		text.Extend(shebangDetector(pythonInterpreter), mimePython, ".py")
	})

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return Classification{}, fmt.Errorf("failed to detect file type of %s: %w", path, err)
	}

	return classifyMIME(path, mtype)
}

func classifyMIME(path string, mtype *mimetype.MIME) (Classification, error) {
	text := false

	for m := mtype; m != nil; m = m.Parent() {
		for _, candidate := range kindByMIME {
			if m.Is(candidate.mime) {
				log.Debug().Str("path", path).Str("mime", mtype.String()).Str("kind", string(candidate.kind)).Msg("classified file")
				return Classification{Kind: candidate.kind, MIME: mtype.String()}, nil
			}
		}
		if m.Is("text/plain") {
			text = true
		}
	}

	if text {
		if kind, ok := kindByExtension[strings.ToLower(filepath.Ext(path))]; ok {
			log.Debug().Str("path", path).Str("kind", string(kind)).Msg("classified file by extension")
			return Classification{Kind: kind, MIME: mtype.String()}, nil
		}
	}

	return Classification{MIME: mtype.String()}, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
}

// shebangDetector matches content whose first line runs an interpreter accepted by re,
// either directly (#!/bin/bash) or through env (#!/usr/bin/env -S python3 -u).
func shebangDetector(re *regexp.Regexp) func(raw []byte, limit uint32) bool {
	return func(raw []byte, _ uint32) bool {
		interp, ok := interpreter(raw)
		return ok && re.MatchString(interp)
	}
}

func interpreter(raw []byte) (string, bool) {
	line, ok := bytes.CutPrefix(raw, []byte("#!"))
	if !ok {
		return "", false
	}
	if i := bytes.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	fields := strings.Fields(string(line))
	if len(fields) == 0 {
		return "", false
	}

	name := filepath.Base(fields[0])
	if name != "env" {
		return name, true
	}

	for _, arg := range fields[1:] {
		if strings.HasPrefix(arg, "-") || strings.Contains(arg, "=") {
			continue
		}
		return filepath.Base(arg), true
	}

	return "", false
}
