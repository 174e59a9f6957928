// Package catalog reads the agronomy reference catalog (districts, soil
// types, varieties and task templates) from YAML or XLSX files.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"plantation-manager/backend/internal/models"
)

var ErrUnsupportedFormat = errors.New("unsupported catalog format")

type DistrictRow struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type SoilTypeRow struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type VarietyRow struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

type TemplateRow struct {
	TaskName             string   `yaml:"task_name"`
	Phase                string   `yaml:"phase"`
	TaskType             string   `yaml:"task_type"`
	VarietyKey           string   `yaml:"variety_key"`
	TimingDaysAfterStart int      `yaml:"timing_days_after_start"`
	DetailedSteps        []string `yaml:"detailed_steps"`
}

type Document struct {
	Districts []DistrictRow `yaml:"districts"`
	SoilTypes []SoilTypeRow `yaml:"soil_types"`
	Varieties []VarietyRow  `yaml:"varieties"`
	Templates []TemplateRow `yaml:"templates"`
}

// Load picks the parser from the file extension.
func Load(path string) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = LoadYAML(path)
	case ".xlsx":
		doc, err = LoadXLSX(path)
	default:
		return nil, fmt.Errorf("catalog.Load %s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("catalog.Load %s: %w", path, err)
	}
	return doc, nil
}

// Validate checks ids are unique and every template points at a known
// variety or the wildcard.
func (d *Document) Validate() error {
	districts := make(map[int]bool, len(d.Districts))
	for _, row := range d.Districts {
		if row.ID <= 0 || strings.TrimSpace(row.Name) == "" {
			return fmt.Errorf("district %d: id and name are required", row.ID)
		}
		if districts[row.ID] {
			return fmt.Errorf("district %d: duplicate id", row.ID)
		}
		districts[row.ID] = true
	}

	soils := make(map[int]bool, len(d.SoilTypes))
	for _, row := range d.SoilTypes {
		if row.ID <= 0 || strings.TrimSpace(row.Name) == "" {
			return fmt.Errorf("soil type %d: id and name are required", row.ID)
		}
		if soils[row.ID] {
			return fmt.Errorf("soil type %d: duplicate id", row.ID)
		}
		soils[row.ID] = true
	}

	varieties := make(map[string]bool, len(d.Varieties))
	for _, row := range d.Varieties {
		if strings.TrimSpace(row.ID) == "" {
			return errors.New("variety id is required")
		}
		if varieties[row.ID] {
			return fmt.Errorf("variety %s: duplicate id", row.ID)
		}
		varieties[row.ID] = true
	}

	for i, row := range d.Templates {
		if strings.TrimSpace(row.TaskName) == "" {
			return fmt.Errorf("template %d: task_name is required", i+1)
		}
		key := row.VarietyKey
		if key == "" {
			return fmt.Errorf("template %q: variety_key is required", row.TaskName)
		}
		if key != models.WildcardVarietyKey && len(varieties) > 0 && !varieties[key] {
			return fmt.Errorf("template %q: unknown variety %q", row.TaskName, key)
		}
	}
	return nil
}

func (d *Document) DistrictModels() []models.District {
	out := make([]models.District, 0, len(d.Districts))
	for _, row := range d.Districts {
		out = append(out, models.District{ID: row.ID, Name: strings.TrimSpace(row.Name)})
	}
	return out
}

func (d *Document) SoilTypeModels() []models.SoilType {
	out := make([]models.SoilType, 0, len(d.SoilTypes))
	for _, row := range d.SoilTypes {
		out = append(out, models.SoilType{ID: row.ID, Name: strings.TrimSpace(row.Name)})
	}
	return out
}

func (d *Document) VarietyModels() []models.Variety {
	out := make([]models.Variety, 0, len(d.Varieties))
	for _, row := range d.Varieties {
		out = append(out, models.Variety{ID: strings.TrimSpace(row.ID), Name: strings.TrimSpace(row.Name)})
	}
	return out
}

func (d *Document) TemplateModels() []models.AgronomyTemplate {
	out := make([]models.AgronomyTemplate, 0, len(d.Templates))
	for _, row := range d.Templates {
		steps := make([]string, 0, len(row.DetailedSteps))
		for _, s := range row.DetailedSteps {
			if s = strings.TrimSpace(s); s != "" {
				steps = append(steps, s)
			}
		}
		out = append(out, models.AgronomyTemplate{
			TaskName:             strings.TrimSpace(row.TaskName),
			Phase:                strings.TrimSpace(row.Phase),
			TaskType:             strings.TrimSpace(row.TaskType),
			VarietyKey:           strings.TrimSpace(row.VarietyKey),
			TimingDaysAfterStart: row.TimingDaysAfterStart,
			DetailedSteps:        steps,
		})
	}
	return out
}

// FromModels rebuilds a document from stored rows, e.g. to export the
// catalog currently in the database.
func FromModels(districts []models.District, soils []models.SoilType, varieties []models.Variety, templates []models.AgronomyTemplate) *Document {
	doc := &Document{}
	for _, d := range districts {
		doc.Districts = append(doc.Districts, DistrictRow{ID: d.ID, Name: d.Name})
	}
	for _, s := range soils {
		doc.SoilTypes = append(doc.SoilTypes, SoilTypeRow{ID: s.ID, Name: s.Name})
	}
	for _, v := range varieties {
		doc.Varieties = append(doc.Varieties, VarietyRow{ID: v.ID, Name: v.Name})
	}
	for _, t := range templates {
		doc.Templates = append(doc.Templates, TemplateRow{
			TaskName:             t.TaskName,
			Phase:                t.Phase,
			TaskType:             t.TaskType,
			VarietyKey:           t.VarietyKey,
			TimingDaysAfterStart: t.TimingDaysAfterStart,
			DetailedSteps:        append([]string(nil), t.DetailedSteps...),
		})
	}
	return doc
}
