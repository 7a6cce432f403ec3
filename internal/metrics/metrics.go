// Package metrics collects Prometheus counters for the recipe workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the services report to. Nop satisfies it for tests.
type Recorder interface {
	RecordRegistration(outcome string)
	RecordLogin(outcome string)
	RecordRecipeCreated(ingredients int)
	RecordRating()
	RecordSearch(stage string)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	recipes       prometheus.Counter
	ingredients   prometheus.Counter
	ratings       prometheus.Counter
	searches      *prometheus.CounterVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipes_registrations_total",
			Help: "Registration attempts by outcome.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipes_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		recipes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipes_created_total",
			Help: "Recipes created.",
		}),
		ingredients: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipes_ingredients_upserted_total",
			Help: "Ingredient ledger upserts.",
		}),
		ratings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipes_ratings_total",
			Help: "Ratings applied.",
		}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipes_searches_total",
			Help: "Searches by the stage that produced results (none when empty).",
		}, []string{"stage"}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.recipes,
		c.ingredients,
		c.ratings,
		c.searches,
	)
	return c
}

// RecordRegistration counts a registration attempt.
func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

// RecordLogin counts a login attempt.
func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

// RecordRecipeCreated counts a recipe and its ledger upserts.
func (c *Collector) RecordRecipeCreated(ingredients int) {
	c.recipes.Inc()
	c.ingredients.Add(float64(ingredients))
}

// RecordRating counts an applied rating.
func (c *Collector) RecordRating() {
	c.ratings.Inc()
}

// RecordSearch counts a search by the stage that answered it.
func (c *Collector) RecordSearch(stage string) {
	c.searches.WithLabelValues(stage).Inc()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) RecordRegistration(string) {}
func (Nop) RecordLogin(string)        {}
func (Nop) RecordRecipeCreated(int)   {}
func (Nop) RecordRating()             {}
func (Nop) RecordSearch(string)       {}
