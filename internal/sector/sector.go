package sector

import (
	_ "embed"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Ровно столько секторов знает система
const Count = 4

//go:embed sectors.yaml
var catalogYAML []byte

// Неизменяемый справочник секторов
type Catalog struct {
	sectors []model.Sector
}

// Load читает встроенный справочник
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Sectors []model.Sector `yaml:"sectors"`
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse sector catalog: %w", err)
	}

	if len(doc.Sectors) != Count {
		return nil, fmt.Errorf("sector catalog must define %d sectors, got %d", Count, len(doc.Sectors))
	}

	seen := make(map[string]struct{}, len(doc.Sectors))
	for _, s := range doc.Sectors {
		if s.ID == "" || s.Name == "" {
			return nil, fmt.Errorf("sector catalog: id and name are required")
		}
		if len(s.Keywords) == 0 {
			return nil, fmt.Errorf("sector %q has no keywords", s.ID)
		}
		if _, ok := seen[s.ID]; ok {
			return nil, fmt.Errorf("sector %q defined twice", s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	return &Catalog{sectors: doc.Sectors}, nil
}

// All возвращает копию, чтобы справочник нельзя было поменять снаружи
func (c *Catalog) All() []model.Sector {
	return lo.Map(c.sectors, func(s model.Sector, _ int) model.Sector {
		s.Keywords = append([]string(nil), s.Keywords...)
		return s
	})
}

func (c *Catalog) ByID(id string) (model.Sector, error) {
	s, ok := lo.Find(c.All(), func(s model.Sector) bool {
		return s.ID == id
	})
	if !ok {
		return model.Sector{}, fmt.Errorf("%w: %s", model.ErrUnknownSector, id)
	}
	return s, nil
}

// Resolve принимает id, порядковый номер (с единицы) или название сектора
func (c *Catalog) Resolve(arg string) (model.Sector, error) {
	arg = strings.TrimSpace(arg)
	all := c.All()

	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(all) {
			return model.Sector{}, fmt.Errorf("%w: %s", model.ErrUnknownSector, arg)
		}
		return all[n-1], nil
	}

	for _, s := range all {
		if s.ID == arg || strings.EqualFold(s.Name, arg) {
			return s, nil
		}
	}

	return model.Sector{}, fmt.Errorf("%w: %s", model.ErrUnknownSector, arg)
}

// Query склеивает ключевые слова в поисковый запрос: пробелы становятся "+", слова соединяются "+"
func Query(keywords []string) string {
	return strings.Join(lo.Map(keywords, func(kw string, _ int) string {
		return url.QueryEscape(strings.TrimSpace(kw))
	}), "+")
}
