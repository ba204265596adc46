package types

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrUnknownFeature = errors.New("unknown feature")

// Feature identifies one gated capability.
type Feature string

const (
	FeatureRemedyLibrary       Feature = "remedy_library"
	FeatureSavedFavorites      Feature = "saved_favorites"
	FeatureNewsletter          Feature = "newsletter"
	FeatureAISymptomFinder     Feature = "ai_symptom_finder"
	FeaturePremiumArticles     Feature = "premium_articles"
	FeatureAdFree              Feature = "ad_free"
	FeatureExpertConsultations Feature = "expert_consultations"
	FeaturePersonalizedPlans   Feature = "personalized_plans"
	FeatureMemberDiscount      Feature = "member_discount"
)

// FeatureMeta is the catalog entry of a Feature.
type FeatureMeta struct {
	ID           Feature          `json:"id"`
	DisplayName  string           `json:"display_name"`
	Description  string           `json:"description"`
	RequiredTier SubscriptionTier `json:"required_tier"`
}

// catalog is the only place a feature's minimum tier is declared.
var catalog = []FeatureMeta{
	{ID: FeatureRemedyLibrary, DisplayName: "Remedy library", Description: "Browse the full remedy catalog", RequiredTier: SubscriptionTierBronze},
	{ID: FeatureSavedFavorites, DisplayName: "Saved favorites", Description: "Bookmark remedies and articles", RequiredTier: SubscriptionTierBronze},
	{ID: FeatureNewsletter, DisplayName: "Wellness newsletter", Description: "Weekly tips by email", RequiredTier: SubscriptionTierBronze},
	{ID: FeatureAISymptomFinder, DisplayName: "AI symptom finder", Description: "Match symptoms to remedies", RequiredTier: SubscriptionTierSilver},
	{ID: FeaturePremiumArticles, DisplayName: "Premium articles", Description: "Members-only long reads", RequiredTier: SubscriptionTierSilver},
	{ID: FeatureAdFree, DisplayName: "Ad-free browsing", Description: "No sponsored placements", RequiredTier: SubscriptionTierSilver},
	{ID: FeatureExpertConsultations, DisplayName: "Expert consultations", Description: "Book sessions with practitioners", RequiredTier: SubscriptionTierGold},
	{ID: FeaturePersonalizedPlans, DisplayName: "Personalized wellness plans", Description: "Plans tailored to your goals", RequiredTier: SubscriptionTierGold},
	{ID: FeatureMemberDiscount, DisplayName: "Member store discount", Description: "Discount on store orders", RequiredTier: SubscriptionTierGold},
}

var (
	catalogByID     map[Feature]FeatureMeta
	featuresForTier map[SubscriptionTier][]Feature
)

func init() {
	catalogByID = make(map[Feature]FeatureMeta, len(catalog))
	for _, m := range catalog {
		if !m.RequiredTier.Valid() {
			panic(fmt.Sprintf("feature %q registered with invalid tier %q", m.ID, m.RequiredTier))
		}
		if _, dup := catalogByID[m.ID]; dup {
			panic(fmt.Sprintf("feature %q registered twice", m.ID))
		}
		catalogByID[m.ID] = m
	}

	// Derived from RequiredTier so higher tiers are supersets by construction.
	featuresForTier = make(map[SubscriptionTier][]Feature, len(Tiers))
	for _, tier := range Tiers {
		var set []Feature
		for _, m := range catalog {
			if tier.AtLeast(m.RequiredTier) {
				set = append(set, m.ID)
			}
		}
		featuresForTier[tier] = set
	}
}

// RequiredTier returns the minimum tier needed for f.
// Querying an unregistered feature is a configuration fault and panics.
func RequiredTier(f Feature) SubscriptionTier {
	m, ok := catalogByID[f]
	if !ok {
		panic(fmt.Sprintf("%v: %q", ErrUnknownFeature, f))
	}
	return m.RequiredTier
}

// FeaturesForTier returns the features unlocked by tier, in catalog order.
// Unknown tiers unlock nothing.
func FeaturesForTier(tier SubscriptionTier) []Feature {
	return slices.Clone(featuresForTier[tier])
}

// Registered reports whether f is part of the catalog.
func (f Feature) Registered() bool {
	_, ok := catalogByID[f]
	return ok
}

func FeatureInfo(f Feature) (FeatureMeta, bool) {
	m, ok := catalogByID[f]
	return m, ok
}

// AllFeatures returns the catalog in declaration order.
func AllFeatures() []FeatureMeta {
	return slices.Clone(catalog)
}

func ParseFeature(s string) (Feature, error) {
	f := Feature(strings.ToLower(strings.TrimSpace(s)))
	if !f.Registered() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
	}
	return f, nil
}
