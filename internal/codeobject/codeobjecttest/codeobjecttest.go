// Package codeobjecttest provides fakes of the code-object service for tests.
package codeobjecttest

import (
	"context"
	"sync"

	"github.com/amdgpu-tools/disassembler/internal/codeobject"
)

// Service is a scripted codeobject.Service. It records the arguments of the
// last calls so tests can assert on them.
type Service struct {
	// Source is returned by Disassemble.
	Source []byte
	// Root is returned by Executable.Metadata.
	Root codeobject.Node

	LoadErr        error
	DisassembleErr error
	MetadataErr    error

	mu       sync.Mutex
	loaded   []byte
	name     string
	isa      string
	language codeobject.Language
}

// Executable is the handle returned by Service.LoadExecutable.
type Executable struct {
	name string
	svc  *Service
}

func (e *Executable) Name() string { return e.name }

func (e *Executable) Metadata() (codeobject.Node, error) {
	if e.svc.MetadataErr != nil {
		return nil, e.svc.MetadataErr
	}
	return e.svc.Root, nil
}

// LoadExecutable implements codeobject.Service.
func (s *Service) LoadExecutable(_ context.Context, data []byte, name string) (codeobject.Executable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	s.loaded = append([]byte(nil), data...)
	s.name = name
	return &Executable{name: name, svc: s}, nil
}

// Disassemble implements codeobject.Service.
func (s *Service) Disassemble(_ context.Context, _ codeobject.Executable, isa string, lang codeobject.Language) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isa = isa
	s.language = lang
	if s.DisassembleErr != nil {
		return nil, s.DisassembleErr
	}
	return s.Source, nil
}

// Loaded returns the bytes and name of the last loaded executable.
func (s *Service) Loaded() ([]byte, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded, s.name
}

// Target returns the ISA and language of the last Disassemble call.
func (s *Service) Target() (string, codeobject.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isa, s.language
}
