// Package classify decides paper relevance and social-engagement scoring.
// Everything here is a pure function of the paper text and the dictionary,
// so results are deterministic and testable without network state.
package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arifsolmaz/exodigest/internal/paper"
)

// Dictionary holds the keyword policy. The zero value is unusable;
// start from Default() or Load().
type Dictionary struct {
	// StrictKeywords always mark a paper exoplanet-focused.
	StrictKeywords []string `yaml:"strict_keywords"`
	// PlanetContexts promote a bare "planet" mention to focused,
	// unless a SolarSystem term is also present.
	PlanetContexts []string `yaml:"planet_contexts"`
	SolarSystem    []string `yaml:"solar_system"`
	// TweetabilityWeights score likely social engagement; negative
	// weights demote solar-system and small-body papers.
	TweetabilityWeights map[string]int `yaml:"tweetability_weights"`
}

// Default returns the built-in keyword policy for astro-ph.EP.
func Default() *Dictionary {
	return &Dictionary{
		StrictKeywords: []string{
			"exoplanet", "exoplanets", "exoplanetary",
			"extrasolar planet", "extrasolar planets",
			"hot jupiter", "warm jupiter", "cold jupiter",
			"super-earth", "super earth", "mini-neptune", "sub-neptune",
			"earth-like planet", "earth-sized planet",
			"rocky planet", "terrestrial planet",
			"habitable zone", "habitable exoplanet", "habitability",
			"biosignature", "biosignatures",
			"microlensing planet", "transiting planet", "transiting exoplanet",
			"radial velocity planet", "directly imaged planet",
			"tess planet", "tess candidate", "toi-",
			"kepler planet", "kepler candidate", "kepler-",
			"k2 planet", "k2-",
			"wasp-", "hat-p-", "hatp-",
			"trappist-1", "trappist",
			"proxima centauri b", "proxima b",
			"gj 1214", "gj 436", "hd 189733", "hd 209458",
			"55 cancri", "tau ceti",
			"exoplanet atmosphere", "exoplanetary atmosphere",
			"transmission spectrum", "transmission spectroscopy",
			"planet occurrence", "planet frequency",
			"planet host star", "planet-hosting star",
			"spin-orbit", "orbital obliquity",
			"planet detection", "planet discovery",
		},
		PlanetContexts: []string{
			"detected", "discovered", "confirmed", "candidate",
			"orbiting", "orbit", "transit", "radial velocity",
			"mass", "radius", "density", "atmosphere",
			"formation", "migration", "evolution",
		},
		SolarSystem: []string{
			"mars", "venus", "mercury", "saturn", "neptune", "uranus",
			"pluto", "asteroid", "comet", "interstellar",
		},
		TweetabilityWeights: map[string]int{
			"habitable": 15, "earth-like": 15, "earth-sized": 12, "potentially habitable": 20,
			"water": 8, "ocean": 10, "life": 12, "biosignature": 15, "oxygen": 10,
			"jwst": 12, "james webb": 12, "webb telescope": 12,
			"first": 10, "discovery": 8, "detected": 6, "confirmed": 8,
			"nearest": 10, "closest": 10, "proxima": 8,
			"trappist": 10, "kepler": 5, "tess": 5,
			"hot jupiter": 6, "super-earth": 8, "mini-neptune": 6,
			"rogue planet": 12, "free-floating": 10,
			"atmosphere": 5, "spectrum": 4, "spectroscopy": 4,
			"clouds": 5, "weather": 6, "climate": 5,
			"migration": 4, "resonance": 4, "tidal": 4,
			"asteroid": -2, "comet": -2, "kuiper": -3, "debris disk": -2,
			"solar system": -5, "mars": -5, "venus": -3, "jupiter": -2,
		},
	}
}

// Load reads a dictionary override from a YAML file. Sections left empty
// in the file fall back to the built-in defaults.
func Load(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords file: %w", err)
	}

	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse keywords file: %w", err)
	}

	def := Default()
	if len(d.StrictKeywords) == 0 {
		d.StrictKeywords = def.StrictKeywords
	}
	if len(d.PlanetContexts) == 0 {
		d.PlanetContexts = def.PlanetContexts
	}
	if len(d.SolarSystem) == 0 {
		d.SolarSystem = def.SolarSystem
	}
	if len(d.TweetabilityWeights) == 0 {
		d.TweetabilityWeights = def.TweetabilityWeights
	}
	return &d, nil
}

// IsExoplanetFocused reports whether the paper is specifically about exoplanets.
func (d *Dictionary) IsExoplanetFocused(title, abstract string) bool {
	text := strings.ToLower(title + " " + abstract)

	for _, keyword := range d.StrictKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}

	// A generic "planet" mention counts when it appears in a discovery or
	// characterization context and the paper is not about the solar system.
	if strings.Contains(text, "planet") {
		hasContext := false
		for _, ctx := range d.PlanetContexts {
			if strings.Contains(text, ctx) {
				hasContext = true
				break
			}
		}
		if hasContext {
			for _, ss := range d.SolarSystem {
				if strings.Contains(text, ss) {
					return false
				}
			}
			return true
		}
	}

	return false
}

// Score sums the tweetability weights of every keyword present in the text.
func (d *Dictionary) Score(title, abstract string) int {
	text := strings.ToLower(title + " " + abstract)
	score := 0
	for keyword, points := range d.TweetabilityWeights {
		if strings.Contains(text, keyword) {
			score += points
		}
	}
	return score
}

// Relevant reports whether the paper belongs in the daily set at all.
// Focused papers always qualify; otherwise any positively-weighted keyword hit does.
func (d *Dictionary) Relevant(title, abstract string) bool {
	if d.IsExoplanetFocused(title, abstract) {
		return true
	}
	text := strings.ToLower(title + " " + abstract)
	for keyword, points := range d.TweetabilityWeights {
		if points > 0 && strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// Annotate stamps relevance metadata onto a paper.
func (d *Dictionary) Annotate(p *paper.Paper) {
	p.ExoplanetFocused = d.IsExoplanetFocused(p.Title, p.Abstract)
	p.TweetabilityScore = d.Score(p.Title, p.Abstract)
}
