package reanim

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
)

// ParseReanim parses Reanim content. The format has no root element, so the
// content is wrapped in <reanim> before decoding.
func ParseReanim(data []byte) (*ReanimXML, error) {
	wrapped := make([]byte, 0, len(data)+len("<reanim></reanim>"))
	wrapped = append(wrapped, "<reanim>"...)
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, "</reanim>"...)

	var r ReanimXML
	if err := xml.Unmarshal(wrapped, &r); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}
	if r.FPS <= 0 {
		r.FPS = DefaultFPS
	}
	return &r, nil
}

// ParseReanimFile parses a Reanim file on disk.
//
//	r, err := ParseReanimFile("assets/reanim/PeaShooter.reanim")
//	if err != nil {
//	    log.Fatalf("Failed to parse reanim: %v", err)
//	}
func ParseReanimFile(path string) (*ReanimXML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reanim file '%s': %w", path, err)
	}
	r, err := ParseReanim(data)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	return r, nil
}

// ReadReanim parses a Reanim file from fsys.
func ReadReanim(fsys fs.FS, path string) (*ReanimXML, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reanim file '%s': %w", path, err)
	}
	r, err := ParseReanim(data)
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	return r, nil
}
