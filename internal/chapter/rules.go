package chapter

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Naming presets for the chapter list offered to the user.
const (
	PresetNumbered = "numbered"
	PresetSubject  = "subject"
	PresetCustom   = "custom"
)

const (
	DefaultChapterCount = 12
	MaxChapterCount     = 50
)

// SubjectChapters is the subject-wise preset for actuarial papers.
var SubjectChapters = []string{
	"Portfolio Theory", "CAPM & Asset Pricing", "Options & Derivatives",
	"Fixed Income", "Risk Management", "Efficient Market Hypothesis",
	"Credit Risk", "Claims Reserving", "Stochastic Processes",
	"Loss Distributions", "Ruin Theory", "Financial Engineering",
}

// Names builds the chapter list for a preset. count applies to the numbered
// preset; custom holds one name per line for the custom preset.
func Names(preset string, count int, custom string) ([]string, error) {
	switch preset {
	case "", PresetNumbered:
		if count < 1 || count > MaxChapterCount {
			return nil, fmt.Errorf("chapter count must be between 1 and %d, got %d", MaxChapterCount, count)
		}
		names := make([]string, count)
		for i := range names {
			names[i] = fmt.Sprintf("Chapter %d", i+1)
		}
		return names, nil
	case PresetSubject:
		return append([]string(nil), SubjectChapters...), nil
	case PresetCustom:
		var names []string
		for _, line := range strings.Split(custom, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				names = append(names, line)
			}
		}
		return names, nil
	default:
		return nil, fmt.Errorf("unknown chapter preset: %s", preset)
	}
}

// ParseKeywords splits "k1, k2, k3" into trimmed keywords, dropping blanks.
func ParseKeywords(s string) []string {
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

type rulesFile struct {
	Chapters []struct {
		Label    string `yaml:"label"`
		Keywords any    `yaml:"keywords"`
	} `yaml:"chapters"`
}

// ParseRules reads rules from YAML. Keywords may be a list or a single
// comma-separated string. Rule order follows the file; rules without a label
// or keywords are skipped.
//
//	chapters:
//	  - label: Chapter 3
//	    keywords: [annuity, perpetuity]
//	  - label: Chapter 7
//	    keywords: "ruin, surplus"
func ParseRules(data []byte) ([]Rule, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}

	var rules []Rule
	for i, c := range f.Chapters {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			continue
		}
		var keywords []string
		switch kw := c.Keywords.(type) {
		case nil:
		case string:
			keywords = ParseKeywords(kw)
		case []any:
			for _, v := range kw {
				if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
					keywords = append(keywords, s)
				}
			}
		default:
			return nil, fmt.Errorf("parse rules: chapter %d: keywords must be a list or string", i+1)
		}
		if len(keywords) == 0 {
			continue
		}
		rules = append(rules, Rule{Label: label, Keywords: keywords})
	}
	return rules, nil
}

// LoadRules reads a YAML rules file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return ParseRules(data)
}
