package stage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rp1-run/rp1/internal/artifact"
)

// PluginsDir holds one directory per plugin below the build root.
const PluginsDir = "plugins"

// discover-artifacts: find commands, agents and skills under
// <root>/plugins/<plugin>/ for each plugin in scope, gitignore respected.
func discoverArtifactsRunner(_ context.Context, in Envelope, deps Deps) (Envelope, error) {
	out := in
	if out.Meta == nil {
		out.Meta = &Meta{}
	}
	meta := out.Meta
	plugins, err := artifact.Plugins(meta.Plugin)
	if err != nil {
		return Envelope{}, err
	}
	absRoot, err := filepath.Abs(determineRoot(meta))
	if err != nil {
		return Envelope{}, err
	}

	var ign *ignoreSet
	if !meta.NoGitignore {
		ign = newIgnoreSet(absRoot)
	}
	var records []Record
	present := 0
	for _, plugin := range plugins {
		dir := filepath.Join(absRoot, PluginsDir, plugin)
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			if len(plugins) > 1 {
				deps.logger().Debug("plugin directory missing", "plugin", plugin)
				continue
			}
			return Envelope{}, fmt.Errorf("%s: plugin directory not found: %s", StageDiscover, path.Join(PluginsDir, plugin))
		}
		present++
		for _, kind := range artifact.Kinds {
			recs, err := discoverKind(absRoot, plugin, kind, ign)
			if err != nil {
				return Envelope{}, fmt.Errorf("%s: %v", StageDiscover, err)
			}
			records = append(records, recs...)
		}
	}
	if present == 0 {
		return Envelope{}, fmt.Errorf("%s: no plugin directories found under %s", StageDiscover, filepath.Join(absRoot, PluginsDir))
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Locator < records[j].Locator })
	out.Records = records
	meta.Discovered = len(records)
	deps.logger().Debug("discovered artifacts", "count", len(records))
	return out, nil
}

func determineRoot(meta *Meta) string {
	if meta != nil && meta.Root != "" {
		return meta.Root
	}
	return "."
}

// discoverKind lists the artifacts of one kind in one plugin.
func discoverKind(absRoot, plugin string, kind artifact.Kind, ign *ignoreSet) ([]Record, error) {
	kindRel := filepath.Join(PluginsDir, plugin, kind.SourceDir())
	kindAbs := filepath.Join(absRoot, kindRel)
	if st, err := os.Stat(kindAbs); err != nil || !st.IsDir() {
		return nil, nil
	}
	if kind == artifact.KindSkill {
		return discoverSkills(absRoot, plugin, kindRel, ign)
	}

	var records []Record
	err := filepath.WalkDir(kindAbs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		if p != kindAbs && ign.Ignored(rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		inKind, err := filepath.Rel(kindAbs, p)
		if err != nil {
			return err
		}
		records = append(records, Record{
			Locator: filepath.ToSlash(rel),
			Kind:    kind,
			Plugin:  plugin,
			Name:    strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Rel:     filepath.ToSlash(inKind),
		})
		return nil
	})
	return records, err
}

// discoverSkills yields one record per skills/<name>/SKILL.md. Every other
// regular file in the skill directory is a supporting file.
func discoverSkills(absRoot, plugin, kindRel string, ign *ignoreSet) ([]Record, error) {
	entries, err := os.ReadDir(filepath.Join(absRoot, kindRel))
	if err != nil {
		return nil, err
	}
	var records []Record
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		skillRel := filepath.Join(kindRel, e.Name())
		if ign.Ignored(skillRel, true) {
			continue
		}
		skillAbs := filepath.Join(absRoot, skillRel)
		if _, err := os.Stat(filepath.Join(skillAbs, artifact.SkillFileName)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		files, err := supportingFiles(absRoot, skillAbs, ign)
		if err != nil {
			return nil, err
		}
		records = append(records, Record{
			Locator:         filepath.ToSlash(filepath.Join(skillRel, artifact.SkillFileName)),
			Kind:            artifact.KindSkill,
			Plugin:          plugin,
			Name:            e.Name(),
			Rel:             path.Join(e.Name(), artifact.SkillFileName),
			SupportingFiles: files,
		})
	}
	return records, nil
}

func supportingFiles(absRoot, skillAbs string, ign *ignoreSet) ([]string, error) {
	var files []string
	err := filepath.WalkDir(skillAbs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == skillAbs {
			return nil
		}
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return err
		}
		if ign.Ignored(rel, d.IsDir()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || d.Name() == ".gitignore" {
			return nil
		}
		inSkill, err := filepath.Rel(skillAbs, p)
		if err != nil {
			return err
		}
		if inSkill == artifact.SkillFileName {
			return nil
		}
		files = append(files, filepath.ToSlash(inSkill))
		return nil
	})
	sort.Strings(files)
	return files, err
}
