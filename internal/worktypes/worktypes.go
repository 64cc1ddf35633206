package worktypes

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"assetdb/pkg/metadata"

	"gopkg.in/yaml.v3"
)

//go:embed catalogue.yaml
var catalogueYAML []byte

const (
	FixedNoChange = "no-change"

	SourceAny   = "any"
	SourceStock = "stock"
	SourceUser  = "user"

	HolderCheckNone     = "none"
	HolderCheckStock    = "stock"
	HolderCheckNotStock = "not_stock"

	HolderTarget = "target"
	HolderStock  = "stock"
	HolderVendor = "vendor"
	HolderKeep   = "keep"
)

type Effect struct {
	State  string `yaml:"state" json:"state"`
	Holder string `yaml:"holder" json:"holder"`
}

type WorkType struct {
	WorkType            string   `yaml:"work_type" json:"work_type"`
	Category            string   `yaml:"category" json:"category"`
	Description         string   `yaml:"description" json:"description"`
	FixedCjID           string   `yaml:"fixed_cj_id" json:"fixed_cj_id,omitempty"`
	DisplayFixedUser    string   `yaml:"display_fixed_user" json:"display_fixed_user,omitempty"`
	AllowedStates       []string `yaml:"allowed_states" json:"allowed_states,omitempty"`
	StrictState         bool     `yaml:"strict_state" json:"strict_state,omitempty"`
	Source              string   `yaml:"source" json:"source"`
	HolderCheck         string   `yaml:"holder_check" json:"holder_check"`
	RequiresUser        bool     `yaml:"requires_user" json:"requires_user"`
	DistinctUser        bool     `yaml:"distinct_user" json:"distinct_user,omitempty"`
	RequiresReplacement bool     `yaml:"requires_replacement" json:"requires_replacement"`
	RequiresDates       bool     `yaml:"requires_dates" json:"requires_dates"`
	Effect              *Effect  `yaml:"effect" json:"effect,omitempty"`
}

// IsUserFixed reports whether the holder is chosen by the work type rather than the caller.
func (w *WorkType) IsUserFixed() bool {
	return w.FixedCjID != ""
}

// Mutates reports whether registering the work type changes the asset row.
func (w *WorkType) Mutates() bool {
	return w.Effect != nil
}

type Catalogue struct {
	items  []WorkType
	byName map[string]*WorkType
}

func Parse(data []byte) (*Catalogue, error) {
	var items []WorkType
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse work type catalogue: %w", err)
	}

	c := &Catalogue{items: items, byName: make(map[string]*WorkType, len(items))}
	for i := range c.items {
		wt := &c.items[i]
		if wt.Source == "" {
			wt.Source = SourceAny
		}
		if wt.HolderCheck == "" {
			wt.HolderCheck = HolderCheckNone
		}
		if err := wt.check(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[wt.WorkType]; dup {
			return nil, fmt.Errorf("duplicate work type %q", wt.WorkType)
		}
		c.byName[wt.WorkType] = wt
	}

	return c, nil
}

func (w *WorkType) check() error {
	if w.WorkType == "" {
		return fmt.Errorf("work type without name")
	}
	switch w.Source {
	case SourceAny, SourceStock, SourceUser:
	default:
		return fmt.Errorf("%s: unknown source %q", w.WorkType, w.Source)
	}
	switch w.HolderCheck {
	case HolderCheckNone, HolderCheckStock, HolderCheckNotStock:
	default:
		return fmt.Errorf("%s: unknown holder_check %q", w.WorkType, w.HolderCheck)
	}
	for _, state := range w.AllowedStates {
		if !metadata.Status(state).IsValid() {
			return fmt.Errorf("%s: unknown allowed state %q", w.WorkType, state)
		}
	}
	if w.Effect == nil {
		return nil
	}
	if !metadata.Status(w.Effect.State).IsValid() {
		return fmt.Errorf("%s: unknown effect state %q", w.WorkType, w.Effect.State)
	}
	switch w.Effect.Holder {
	case HolderTarget, HolderStock, HolderVendor, HolderKeep:
	default:
		return fmt.Errorf("%s: unknown effect holder %q", w.WorkType, w.Effect.Holder)
	}
	if w.Effect.Holder == HolderTarget && !w.RequiresUser {
		return fmt.Errorf("%s: target holder needs requires_user", w.WorkType)
	}
	return nil
}

var loadDefault = sync.OnceValues(func() (*Catalogue, error) {
	return Parse(catalogueYAML)
})

// Default returns the embedded catalogue. It panics if the embedded file is broken.
func Default() *Catalogue {
	c, err := loadDefault()
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalogue) All() []WorkType {
	return slices.Clone(c.items)
}

func (c *Catalogue) Lookup(workType string) (*WorkType, bool) {
	wt, ok := c.byName[workType]
	return wt, ok
}

// AvailableFor lists the work types offered for an asset in its current state.
func (c *Catalogue) AvailableFor(state, inUser string) []WorkType {
	if state == "" {
		return []WorkType{}
	}
	if metadata.IsHold(state) {
		return c.All()
	}

	isStock := inUser == metadata.HolderStock
	available := []WorkType{}
	for _, wt := range c.items {
		if len(wt.AllowedStates) > 0 && !slices.Contains(wt.AllowedStates, state) {
			continue
		}
		if wt.Source == SourceStock && !isStock {
			continue
		}
		if wt.Source == SourceUser && isStock {
			continue
		}
		available = append(available, wt)
	}
	return available
}

// HolderChanging lists the work types that hand an asset to another holder.
func (c *Catalogue) HolderChanging() []string {
	var names []string
	for _, wt := range c.items {
		if wt.Effect != nil && wt.Effect.Holder != HolderKeep {
			names = append(names, wt.WorkType)
		}
	}
	return names
}
