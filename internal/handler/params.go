package handler

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// params collects query parameters and remembers the first parse error.
type params struct {
	query url.Values
	err   error
}

func newParams(q url.Values) *params {
	return &params{query: q}
}

func (p *params) fail(name, reason string) {
	if p.err == nil {
		p.err = fmt.Errorf("parameter %q: %s", name, reason)
	}
}

func (p *params) String(name string) string {
	v := p.query.Get(name)
	if v == "" {
		p.fail(name, "required")
	}
	return v
}

func (p *params) OptionalString(name string) string {
	return p.query.Get(name)
}

func (p *params) Int64(name string) int64 {
	raw := p.String(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail(name, err.Error())
	}
	return v
}

func (p *params) OptionalUint32(name string, fallback uint32) uint32 {
	raw := p.query.Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseUint(raw, 0, 32)
	if err != nil {
		p.fail(name, err.Error())
	}
	return uint32(v)
}

func (p *params) Uint32(name string) uint32 {
	if p.query.Get(name) == "" {
		p.fail(name, "required")
		return 0
	}
	return p.OptionalUint32(name, 0)
}

func (p *params) Bool(name string) bool {
	raw := p.query.Get(name)
	if raw == "" {
		return false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(name, err.Error())
	}
	return v
}

// Time reads a unix nanosecond timestamp. Absent parameters yield nil.
func (p *params) Time(name string) *time.Time {
	raw := p.query.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.fail(name, err.Error())
		return nil
	}
	ts := time.Unix(0, v).UTC()
	return &ts
}

// Base64 decodes standard base64. An empty value is an empty payload.
func (p *params) Base64(name string) []byte {
	data, err := base64.StdEncoding.DecodeString(p.query.Get(name))
	if err != nil {
		p.fail(name, err.Error())
	}
	return data
}

func (p *params) Err() error {
	return p.err
}
