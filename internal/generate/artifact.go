package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/pbaille/daemon/internal/domain"
)

// DefaultToolCount matches the number of tools exposed by the daemon MCP server.
const DefaultToolCount = 14

const (
	daemonDecl = "export const daemonData: DaemonData = "
	heroDecl   = "export const heroData: HeroData = "
)

var artifactTmpl = template.Must(template.New("artifact").Parse(`/**
 * AUTO-GENERATED FILE - DO NOT EDIT
 *
 * Generated from: {{.Source}}
 * Parser: daemon parse
 * To update, edit your daemon.md and run: daemon parse
 *
 * Generated: {{.Generated}}
 */

import type { DaemonData, HeroData } from "../types/daemon.types";

` + daemonDecl + `{{.Daemon}};

` + heroDecl + `{{.Hero}};

/**
 * Tool count for dashboard (matches MCP server tools)
 */
export const toolCount = {{.ToolCount}};
`))

// Artifact is everything that goes into the generated TypeScript module.
type Artifact struct {
	Source      string
	GeneratedAt time.Time
	Daemon      domain.DaemonData
	Hero        domain.HeroData
	ToolCount   int
}

// Render produces the TypeScript source for a.
func Render(a Artifact) ([]byte, error) {
	daemonJSON, err := marshalLiteral(a.Daemon)
	if err != nil {
		return nil, fmt.Errorf("render daemon data: %w", err)
	}
	heroJSON, err := marshalLiteral(a.Hero)
	if err != nil {
		return nil, fmt.Errorf("render hero data: %w", err)
	}

	var buf bytes.Buffer
	err = artifactTmpl.Execute(&buf, map[string]any{
		"Source":    a.Source,
		"Generated": a.GeneratedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		"Daemon":    daemonJSON,
		"Hero":      heroJSON,
		"ToolCount": a.ToolCount,
	})
	if err != nil {
		return nil, fmt.Errorf("render artifact: %w", err)
	}
	return buf.Bytes(), nil
}

// marshalLiteral encodes v as tab-indented JSON without HTML escaping.
func marshalLiteral(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "\t")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// ReadArtifact decodes the daemonData and heroData literals back out of a
// generated module.
func ReadArtifact(src []byte) (domain.DaemonData, domain.HeroData, error) {
	var d domain.DaemonData
	var h domain.HeroData
	if err := decodeAfter(src, daemonDecl, &d); err != nil {
		return d, h, fmt.Errorf("read daemonData: %w", err)
	}
	if err := decodeAfter(src, heroDecl, &h); err != nil {
		return d, h, fmt.Errorf("read heroData: %w", err)
	}
	return d, h, nil
}

func decodeAfter(src []byte, decl string, v any) error {
	i := bytes.Index(src, []byte(decl))
	if i < 0 {
		return fmt.Errorf("declaration %q not found", strings.TrimSpace(decl))
	}
	dec := json.NewDecoder(bytes.NewReader(src[i+len(decl):]))
	return dec.Decode(v)
}
