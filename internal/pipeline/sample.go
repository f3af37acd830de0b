package pipeline

import "offersmonkey/pkg/models"

// SampleOffers is the bundled dataset served when the database has no
// offers yet, so a fresh install still renders a populated home screen.
func SampleOffers() []models.Offer {
	return []models.Offer{
		{
			ID:             "offer-900001",
			FeedID:         900001,
			Title:          "Up to 60% off headphones and speakers",
			Description:    "Top audio brands at clearance prices.",
			Store:          "Amazon",
			Categories:     "Electronics,Audio",
			Price:          1999,
			OriginalPrice:  4999,
			PriceEstimated: true,
			Savings:        "60% OFF",
			Featured:       true,
			Status:         "active",
			IsAmazon:       true,
		},
		{
			ID:             "offer-900002",
			FeedID:         900002,
			Title:          "Flat 40% off running shoes",
			Description:    "Nike, Adidas and Puma running styles.",
			Store:          "Myntra",
			Categories:     "Fashion,Footwear",
			Code:           "RUN40",
			Price:          2399,
			OriginalPrice:  3999,
			PriceEstimated: true,
			Savings:        "40% OFF",
			Status:         "active",
		},
		{
			ID:             "offer-900003",
			FeedID:         900003,
			Title:          "Buy 1 get 1 free on pizzas",
			Description:    "Valid on medium and large pizzas, all outlets.",
			Store:          "Domino's",
			Categories:     "Food",
			Code:           "BOGO",
			Price:          299,
			OriginalPrice:  598,
			PriceEstimated: true,
			Savings:        "Save ₹299",
			Status:         "active",
		},
		{
			ID:             "offer-900004",
			FeedID:         900004,
			Title:          "10% instant discount with HDFC cards",
			Description:    "HDFC Bank credit and debit cards, min order ₹2500.",
			Store:          "Flipkart",
			Categories:     "Electronics",
			Price:          2250,
			OriginalPrice:  2500,
			PriceEstimated: true,
			Savings:        "10% OFF",
			Status:         "active",
		},
		{
			ID:             "offer-900005",
			FeedID:         900005,
			Title:          "Domestic flights from ₹1499",
			Description:    "Limited period sale on select routes.",
			Store:          "MakeMyTrip",
			Categories:     "Travel",
			Price:          1499,
			OriginalPrice:  2999,
			PriceEstimated: true,
			Savings:        "50% OFF",
			Featured:       true,
			Status:         "active",
		},
		{
			ID:             "offer-900006",
			FeedID:         900006,
			Title:          "Flat 25% off skincare bestsellers",
			Description:    "Top rated serums and moisturisers.",
			Store:          "Nykaa",
			Categories:     "Beauty",
			Code:           "GLOW25",
			Price:          749,
			OriginalPrice:  999,
			PriceEstimated: true,
			Savings:        "25% OFF",
			Status:         "active",
		},
	}
}
