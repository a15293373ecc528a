package models

import "math"

// SubscriptionPlan is a purchasable minute bundle. Hours are split into the
// advertised base and the bonus granted on top; both convert to balance
// minutes on purchase.
type SubscriptionPlan struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	BaseHours   float64  `json:"baseHours"`
	BonusHours  float64  `json:"bonusHours"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
	Highlight   bool     `json:"highlight"`
	Badge       string   `json:"badge,omitempty"`
}

var subscriptionPlans = []SubscriptionPlan{
	{
		ID:          "basic",
		Name:        "Basic",
		Price:       22.99,
		BaseHours:   3,
		BonusHours:  0,
		Description: "Locked-in prep for a single onsite loop or panel.",
		Benefits: []string{
			"3 total interview hours to schedule anytime",
			"Question banks tailored to FAANG & startup roles",
			"Downloadable feedback summaries",
		},
	},
	{
		ID:          "plus",
		Name:        "Plus",
		Price:       45.99,
		BaseHours:   6,
		BonusHours:  2,
		Description: "Stay sharp across an entire interview cycle.",
		Benefits: []string{
			"8 total interview hours with reusable scenarios",
			"Unlimited behavioral + technical prep flows",
			"Progress tracking across competencies",
		},
		Highlight: true,
		Badge:     "Most popular",
	},
	{
		ID:          "advanced",
		Name:        "Advanced",
		Price:       65.99,
		BaseHours:   9,
		BonusHours:  4,
		Description: "Deep practice for power users, teams, and coaches.",
		Benefits: []string{
			"13 total interview hours with shareable sessions",
			"Invite collaborators to review transcripts",
			"Export-ready reports for mentors or managers",
		},
	},
}

// PlanByID returns the plan for id, or nil when no such plan exists.
func PlanByID(id string) *SubscriptionPlan {
	for i := range subscriptionPlans {
		if subscriptionPlans[i].ID == id {
			return &subscriptionPlans[i]
		}
	}
	return nil
}

// ListPaidPlans returns the purchasable plan catalogue in display order.
func ListPaidPlans() []SubscriptionPlan {
	out := make([]SubscriptionPlan, len(subscriptionPlans))
	copy(out, subscriptionPlans)
	return out
}

// TotalMinutesForPlan is the minute grant a purchase of plan produces.
func TotalMinutesForPlan(plan SubscriptionPlan) float64 {
	return math.Round((plan.BaseHours + plan.BonusHours) * MinutesPerHour)
}
