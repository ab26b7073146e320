// Copyright 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config defines the JSON pipeline configuration: which raw files to
// ingest, which warehouse to load, the calendar range for the date dimension,
// the row-cleaning steps to apply, and the cubes to build afterwards.
//
// Options is a permissive map with typed accessors so step definitions can
// carry free-form settings without per-step config structs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Options holds free-form per-step settings decoded from JSON.
type Options map[string]any

// UnmarshalJSON decodes an object into the map; null or empty input yields a
// non-nil empty map so callers never need nil checks.
func (o *Options) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*o = Options{}
		return nil
	}
	m := map[string]any{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*o = m
	return nil
}

// String returns the string under key, or def when missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key].(string); ok {
		return v
	}
	return def
}

// Bool returns the bool under key, or def when missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key].(bool); ok {
		return v
	}
	return def
}

// Int returns the int under key. JSON numbers arrive as float64 and are
// truncated; native ints pass through. def is returned otherwise.
func (o Options) Int(key string, def int) int {
	switch v := o[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// Rune returns the first rune of a non-empty string under key, or def.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key].(string); ok && v != "" {
		return []rune(v)[0]
	}
	return def
}

// StringMap returns a map of the string-valued entries of the object under
// key. Missing keys and non-objects yield an empty, non-nil map.
func (o Options) StringMap(key string) map[string]string {
	out := map[string]string{}
	m, ok := o[key].(map[string]any)
	if !ok {
		return out
	}
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// StringSlice returns the string elements of the array under key, in order,
// skipping non-strings. Missing keys and non-arrays yield nil.
func (o Options) StringSlice(key string) []string {
	switch arr := o[key].(type) {
	case []any:
		var out []string
		for _, v := range arr {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return arr
	default:
		return nil
	}
}

// Transform names one row-cleaning step plus its settings, e.g.
// {"kind": "drop_duplicates", "options": {"keys": ["customer_id"]}}.
type Transform struct {
	Kind    string  `json:"kind"`
	Options Options `json:"options,omitempty"`
}

// Warehouse selects the storage backend and its connection string. Options
// carries backend tuning such as "batch_size".
type Warehouse struct {
	Driver  string  `json:"driver"` // "sqlite" | "postgres" | "mysql"
	DSN     string  `json:"dsn"`
	Options Options `json:"options,omitempty"`
}

// DateRange bounds the generated date dimension, inclusive, "2006-01-02".
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CubeSpec describes one cube to build from the loaded facts.
//
// Metrics maps a fact column to the aggregation functions applied to it.
// Order of Dimensions is the grouping order and the output column order.
// Options carries cube tuning such as "id_column" (traceability id source,
// default sales_id).
type CubeSpec struct {
	Name       string              `json:"name"`
	Dimensions []string            `json:"dimensions"`
	Metrics    map[string][]string `json:"metrics"`
	Output     string              `json:"output"`
	Options    Options             `json:"options,omitempty"`
}

// Pipeline is the whole run configuration. CSV carries raw input parsing
// settings ("comma", "lazy_quotes").
type Pipeline struct {
	Name      string            `json:"name"`
	Inputs    map[string]string `json:"inputs"` // entity -> raw CSV path
	CSV       Options           `json:"csv,omitempty"`
	Warehouse Warehouse         `json:"warehouse"`
	DateDim   DateRange         `json:"date_dim"`
	Transform []Transform       `json:"transform,omitempty"`
	Cubes     []CubeSpec        `json:"cubes,omitempty"`
}

// Load reads and decodes a pipeline configuration file.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse config %s: %w", path, err)
	}
	if p.Warehouse.Driver == "" {
		p.Warehouse.Driver = "sqlite"
	}
	return p, nil
}
