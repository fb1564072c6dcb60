package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/raffle/pkg/raffle"
	"github.com/cognicore/raffle/pkg/raffle/internalerr"
	"github.com/cognicore/raffle/pkg/raffle/selector"
)

// Default filter values applied when a request leaves them unset.
const (
	DefaultFilterOutTags = `monochrome, greyscale,
anus, anus_peek, spread_anus, spreading_own_anus, spread_anus_under_clothes,
anal, anal_only, after_anal, anal_fluid,
anal_object_insertion, butt_plug, jewel_butt_plug, anal_beads,
gaping, extreme_gaping,
prolapse, anal_prolapse, fisting, anal_fisting,
cross-section, cervix, cervical_penetration, uterus, internal_cumshot, x-ray,
lactation, forced_lactation, male_lactation, projectile_lactation, lactation_through_clothes, breast_milk,
female_pubic_hair, pubic_hair, pubic_hair_peek,
male_focus, male_penetrated, interracial, dark-skinned_male,
condom, used_condom, condom_wrapper, condom_in_mouth, holding_condom, condom_on_penis, multiple_condoms, condom_packet_strip, pointless_condom, condom_belt, condom_box, used_condom_on_penis, condom_left_inside, colored_condom, okamoto_condoms, condom_wrapper_in_clothes, condom_thigh_strap, buying_condoms, broken_condom, used_condom_in_clothes`

	DefaultExcludeTaglists = "comic, 4koma, multiple_girls, multiple_boys, multiple_views, reference_sheet, 2girls, 3girls, 4girls, 5girls, 6+girls, 2boys, 3boys, 4boys, 5boys, 6+boys, gangbang, threesome, mmf_threesome, ffm_threesome, group_sex, cooperative_fellatio, cooperative_paizuri, double_handjob, surrounded_by_penises, furry, obese, yaoi, yuri, otoko_no_ko, strap-on, futa_with_female, futa_without_pussy, implied_futanari, futanari, diaper, fart, pee, peeing, pee_puddle, pee_stain, peeing_self, golden_shower, scat, guro, ero_guro, intestines, vore, horse_penis"

	DefaultExcludeCategories = "clothes_and_accessories, female_physical_descriptors, named_garment_exposure, specific_garment_interactions, speech_and_text, standard_physical_descriptors, metadata_and_attribution, intentional_design_exposure, two_handed_character_items, holding_large_items, content_censorship_methods"
)

// Environment variables that override file settings
const (
	EnvListsDir   = "RAFFLE_LISTS_DIR"
	EnvDatabase   = "RAFFLE_DATABASE"
	EnvHistoryDir = "RAFFLE_HISTORY_DIR"
)

// Config is the top-level raffle configuration
type Config struct {
	ListsDir        string      `yaml:"lists_dir"`
	CategorizedTags string      `yaml:"categorized_tags"`
	Database        string      `yaml:"database"`
	Sources         SourceFiles `yaml:"sources"`
	Selection       Selection   `yaml:"selection"`
	Defaults        Defaults    `yaml:"defaults"`
	History         History     `yaml:"history"`
}

// SourceFiles names the taglist file of each rating, relative to ListsDir
type SourceFiles struct {
	General      string `yaml:"general"`
	Questionable string `yaml:"questionable"`
	Sensitive    string `yaml:"sensitive"`
	Explicit     string `yaml:"explicit"`
}

// File returns the configured file name for a rating.
func (s SourceFiles) File(r raffle.Rating) string {
	switch r {
	case raffle.General:
		return s.General
	case raffle.Questionable:
		return s.Questionable
	case raffle.Sensitive:
		return s.Sensitive
	case raffle.Explicit:
		return s.Explicit
	}
	return ""
}

// Selection configures the seeded selector
type Selection struct {
	Mode string `yaml:"mode"`
}

// Defaults holds the request values used when the caller gives none
type Defaults struct {
	UseGeneral        bool   `yaml:"use_general"`
	UseQuestionable   bool   `yaml:"use_questionable"`
	UseSensitive      bool   `yaml:"use_sensitive"`
	UseExplicit       bool   `yaml:"use_explicit"`
	MustInclude       string `yaml:"must_include"`
	FilterOutTags     string `yaml:"filter_out_tags"`
	ExcludeTaglists   string `yaml:"exclude_taglists"`
	ExcludeCategories string `yaml:"exclude_categories"`
}

// Request builds a raffle request from the defaults.
func (d Defaults) Request(seed uint64) raffle.Request {
	return raffle.Request{
		Seed:              seed,
		UseGeneral:        d.UseGeneral,
		UseQuestionable:   d.UseQuestionable,
		UseSensitive:      d.UseSensitive,
		UseExplicit:       d.UseExplicit,
		MustInclude:       d.MustInclude,
		FilterOut:         d.FilterOutTags,
		ExcludeTaglists:   d.ExcludeTaglists,
		ExcludeCategories: d.ExcludeCategories,
	}
}

// History configures the history directory manager
type History struct {
	Dir  string `yaml:"dir"`
	Size int    `yaml:"size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListsDir:        "lists",
		CategorizedTags: "categorized_tags.txt",
		Sources: SourceFiles{
			General:      "taglists-general.txt",
			Questionable: "taglists-questionable.txt",
			Sensitive:    "taglists-sensitive.txt",
			Explicit:     "taglists-explicit.txt",
		},
		Selection: Selection{Mode: selector.ModeLegacy.String()},
		Defaults: Defaults{
			UseSensitive:      true,
			UseExplicit:       true,
			FilterOutTags:     DefaultFilterOutTags,
			ExcludeTaglists:   DefaultExcludeTaglists,
			ExcludeCategories: DefaultExcludeCategories,
		},
		History: History{
			Dir:  "history_folder",
			Size: 9,
		},
	}
}

// Load reads a YAML config file on top of Default and applies environment
// overrides. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", internalerr.ErrInvalidConfig, path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides paths from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvListsDir); v != "" {
		c.ListsDir = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvHistoryDir); v != "" {
		c.History.Dir = v
	}
}

// Validate reports settings that cannot produce a working raffle.
func (c *Config) Validate() error {
	if c.ListsDir == "" && c.Database == "" {
		return fmt.Errorf("%w: lists_dir or database must be set", internalerr.ErrInvalidConfig)
	}
	if c.Database == "" && c.CategorizedTags == "" {
		return fmt.Errorf("%w: categorized_tags must be set", internalerr.ErrInvalidConfig)
	}
	if _, err := selector.ParseMode(c.Selection.Mode); err != nil {
		return err
	}
	if c.History.Size < 1 {
		return fmt.Errorf("%w: history.size must be at least 1, got %d", internalerr.ErrInvalidConfig, c.History.Size)
	}
	return nil
}

// ListPath resolves a file name against ListsDir unless it is absolute.
func (c *Config) ListPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.ListsDir, name)
}
