package scanner

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/credsweep/credsweep/pkg/config"
	"github.com/credsweep/credsweep/pkg/scan"
)

// ErrMatchNotFound is returned when the id has no cache entry.
var ErrMatchNotFound = fmt.Errorf("match not found in scan cache")

// RemoveMatch removes the finding with the given id.
//
// Discussion-sourced: the owning transcript file is deleted outright (once a
// secret has been typed into a session, the whole session is treated as
// compromised) and every cache entry for that session goes with it. A file
// that is already gone counts as success.
//
// Settings-sourced: the value at the match's key path is deleted from the
// owning settings document and the document is rewritten in place.
func (o *Orchestrator) RemoveMatch(id string) error {
	c := o.Store.Load()

	var target *scan.TokenMatch
	for i := range c.Tokens {
		if c.Tokens[i].ID == id {
			target = &c.Tokens[i]
			break
		}
	}
	if target == nil {
		return ErrMatchNotFound
	}

	switch loc := target.Location.(type) {
	case scan.DiscussionLocation:
		if err := os.Remove(loc.FilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete transcript: %w", err)
		}
		kept := c.Tokens[:0]
		for _, m := range c.Tokens {
			if d, ok := m.Location.(scan.DiscussionLocation); ok &&
				d.EncodedProjectDir == loc.EncodedProjectDir &&
				d.SessionID == loc.SessionID {
				continue
			}
			kept = append(kept, m)
		}
		c.Tokens = kept

	case scan.SettingsLocation:
		if err := removeFromSettings(o.Cfg.DataDir, loc); err != nil {
			return err
		}
		kept := c.Tokens[:0]
		for _, m := range c.Tokens {
			if s, ok := m.Location.(scan.SettingsLocation); ok && s == loc {
				continue
			}
			kept = append(kept, m)
		}
		c.Tokens = kept

	default:
		return fmt.Errorf("match %s has no location", id)
	}

	return o.Store.Save(c)
}

// removeFromSettings deletes the value at the location's key path from the
// owning settings document and rewrites it.
func removeFromSettings(dataDir string, loc scan.SettingsLocation) error {
	var path string
	switch loc.Scope {
	case scan.ScopeUser:
		path = config.UserSettingsPath(dataDir)
	case scan.ScopeProject:
		path = config.ProjectSettingsPath(loc.ProjectPath)
	case scan.ScopeProjectLocal:
		path = config.ProjectLocalSettingsPath(loc.ProjectPath)
	default:
		return fmt.Errorf("unknown settings scope %q", loc.Scope)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings document: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse settings document: %w", err)
	}

	segs, err := parseKeyPath(loc.SettingsKey)
	if err != nil {
		return err
	}
	doc, removed := deleteAtPath(doc, segs)
	if !removed {
		return fmt.Errorf("settings key %q not found in %s", loc.SettingsKey, path)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings document: %w", err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, append(out, '\n'), mode); err != nil {
		return fmt.Errorf("failed to rewrite settings document: %w", err)
	}
	return nil
}

// pathSeg is one step of a dotted/bracketed key path: either a map key or
// an array index.
type pathSeg struct {
	key     string
	index   int
	isIndex bool
}

// parseKeyPath splits a key path like "hooks[2].command" into segments.
func parseKeyPath(path string) ([]pathSeg, error) {
	if path == "" {
		return nil, fmt.Errorf("empty settings key path")
	}

	var segs []pathSeg
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, pathSeg{key: cur.String()})
			cur.Reset()
		}
	}

	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			flush()
			i++
		case '[':
			flush()
			close := strings.IndexByte(path[i:], ']')
			if close < 0 {
				return nil, fmt.Errorf("unterminated index in key path %q", path)
			}
			idx, err := strconv.Atoi(path[i+1 : i+close])
			if err != nil {
				return nil, fmt.Errorf("bad index in key path %q: %v", path, err)
			}
			segs = append(segs, pathSeg{index: idx, isIndex: true})
			i += close + 1
		default:
			cur.WriteByte(path[i])
			i++
		}
	}
	flush()

	if len(segs) == 0 {
		return nil, fmt.Errorf("empty settings key path")
	}
	return segs, nil
}

// deleteAtPath removes the value addressed by segs from a parsed JSON
// document. Map leaves are deleted from their parent; array leaves are
// spliced out. Returns the (possibly replaced) node and whether anything was
// removed. Deletion is exact: only the addressed value is touched.
func deleteAtPath(node any, segs []pathSeg) (any, bool) {
	seg := segs[0]

	switch v := node.(type) {
	case map[string]any:
		if seg.isIndex {
			return node, false
		}
		child, ok := v[seg.key]
		if !ok {
			return node, false
		}
		if len(segs) == 1 {
			delete(v, seg.key)
			return v, true
		}
		newChild, removed := deleteAtPath(child, segs[1:])
		if removed {
			v[seg.key] = newChild
		}
		return v, removed

	case []any:
		if !seg.isIndex || seg.index < 0 || seg.index >= len(v) {
			return node, false
		}
		if len(segs) == 1 {
			return append(v[:seg.index], v[seg.index+1:]...), true
		}
		newChild, removed := deleteAtPath(v[seg.index], segs[1:])
		if removed {
			v[seg.index] = newChild
		}
		return v, removed

	default:
		return node, false
	}
}
