package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"

	"github.com/teranos/clutz/errors"
	"github.com/teranos/clutz/logger"
)

// DefaultVersionConstraint is the range of dump schema versions understood.
const DefaultVersionConstraint = ">=1.0.0 <2.0.0"

// Format of a dump document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.WithHint(
		errors.Wrapf(errors.ErrInvalidOracle, "unrecognised dump extension %q", filepath.Ext(path)),
		"use .json, .yaml, .yml or .toml")
}

// Decode parses a dump document.
func Decode(data []byte, format Format) (*Dump, error) {
	var d Dump
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&d)
	case FormatYAML:
		err = yaml.Unmarshal(data, &d)
	case FormatTOML:
		_, err = toml.Decode(string(data), &d)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidOracle, "unknown format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(err, errors.ErrInvalidOracle), "decode %s dump", format)
	}
	return &d, nil
}

// Load reads and decodes the dump at path.
func Load(path string) (*Dump, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read oracle dump %s", path)
	}
	d, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	logger.ComponentLogger("oracle").Debugw("dump loaded",
		logger.FieldPath, path,
		logger.FieldUnits, len(d.Units))
	return d, nil
}

// CheckVersion verifies the dump's schema version satisfies constraint.
// An empty constraint uses DefaultVersionConstraint.
func CheckVersion(d *Dump, constraint string) error {
	if constraint == "" {
		constraint = DefaultVersionConstraint
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, "invalid version constraint %q", constraint)
	}
	if d.Version == "" {
		return errors.WithHint(
			errors.Wrap(errors.ErrUnsupportedVersion, "dump has no version"),
			"regenerate the dump with a current oracle")
	}
	v, err := semver.NewVersion(d.Version)
	if err != nil {
		return errors.Wrapf(errors.Mark(err, errors.ErrUnsupportedVersion), "invalid dump version %q", d.Version)
	}
	if !c.Check(v) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrUnsupportedVersion, "dump version %s does not satisfy %s", v, constraint),
			"set oracle.version_constraint to accept %s", v)
	}
	return nil
}

// RunCommand runs an oracle command line and decodes its JSON stdout.
// The command is split with shell quoting rules; it is not run by a shell.
func RunCommand(ctx context.Context, command string) (*Dump, error) {
	args, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "parse oracle command %q", command)
	}
	if len(args) == 0 {
		return nil, errors.New("empty oracle command")
	}

	log := logger.ComponentLogger("oracle")
	start := time.Now()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		err = errors.Wrapf(err, "run oracle %s", args[0])
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			err = errors.WithDetail(err, msg)
		}
		return nil, err
	}

	d, err := Decode(stdout.Bytes(), FormatJSON)
	if err != nil {
		return nil, errors.Wrapf(err, "oracle %s output", args[0])
	}
	log.Debugw("oracle command finished",
		"command", args[0],
		logger.FieldUnits, len(d.Units),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return d, nil
}
