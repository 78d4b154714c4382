package offer

import (
	"errors"
	"testing"

	"negobot/internal/model"
	"negobot/internal/policy"
)

func product(price, minPrice int64, stock int) *model.Product {
	return &model.Product{ID: 1, Name: "test", Price: price, MinPrice: minPrice, Stock: stock}
}

func offerOf(paise int64) *int64 { return &paise }

func TestMinimumPrice(t *testing.T) {
	pol := policy.Default()

	tests := []struct {
		name    string
		product *model.Product
		want    int64
		wantTag model.ReasoningTag
	}{
		{
			// Spec walkthrough: ₹25,000 list, stock 20. High band discount
			// (15%) and the 0.85 policy floor coincide at ₹21,250.
			name:    "high stock band meets policy floor",
			product: product(2500000, 0, 20),
			want:    2125000,
			wantTag: model.ReasonHighStockBand,
		},
		{
			// ₹10,000 list, stock 2, explicit floor ₹9,800. Low band gives
			// ₹9,500 and the policy floor ₹8,500; the explicit floor wins.
			name:    "explicit floor dominates",
			product: product(1000000, 980000, 2),
			want:    980000,
			wantTag: model.ReasonExplicitFloor,
		},
		{
			// Mid band: stock between thresholds inclusive. 10% off ₹10,000
			// is ₹9,000, above the ₹8,500 policy floor.
			name:    "mid stock band",
			product: product(1000000, 0, 10),
			want:    900000,
			wantTag: model.ReasonMidStockBand,
		},
		{
			name:    "low stock band",
			product: product(1000000, 0, 2),
			want:    950000,
			wantTag: model.ReasonLowStockBand,
		},
		{
			// Stock exactly at the high threshold stays in the mid band.
			name:    "boundary stock at high threshold",
			product: product(1000000, 0, 15),
			want:    900000,
			wantTag: model.ReasonMidStockBand,
		},
		{
			// Stock exactly at the low threshold is in the mid band.
			name:    "boundary stock at low threshold",
			product: product(1000000, 0, 5),
			want:    900000,
			wantTag: model.ReasonMidStockBand,
		},
		{
			name:    "zero stock",
			product: product(1000000, 0, 0),
			want:    950000,
			wantTag: model.ReasonLowStockBand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, tag, err := MinimumPrice(tt.product, pol)
			if err != nil {
				t.Fatalf("MinimumPrice() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("MinimumPrice() = %d, want %d", got, tt.want)
			}
			if tag != tt.wantTag {
				t.Errorf("tag = %s, want %s", tag, tt.wantTag)
			}
		})
	}
}

func TestMinimumPricePolicyFloorDominates(t *testing.T) {
	// Deep high-band discount would go to ₹7,000 but the 0.85 floor holds.
	pol := policy.Default()
	pol.HighStockDiscountPct = 0.30
	pol.MidStockDiscountPct = 0.10
	pol.LowStockDiscountPct = 0.05

	got, tag, err := MinimumPrice(product(1000000, 0, 50), pol)
	if err != nil {
		t.Fatal(err)
	}
	if got != 850000 {
		t.Errorf("MinimumPrice() = %d, want 850000", got)
	}
	if tag != model.ReasonPolicyFloor {
		t.Errorf("tag = %s, want %s", tag, model.ReasonPolicyFloor)
	}
}

func TestMinimumPriceRoundingNeverDipsBelowFloor(t *testing.T) {
	// List price chosen so the floor lands just above a rounding step:
	// ₹9,990.01 * 0.85 = ₹8,491.51, nearest ₹10 would round down to
	// ₹8,490 - below the floor. The engine must bump up a step instead.
	pol := policy.Default()
	pol.HighStockDiscountPct = 0.50 // force the policy floor to bind

	p := product(999001, 0, 100)
	got, _, err := MinimumPrice(p, pol)
	if err != nil {
		t.Fatal(err)
	}
	floor := int64(849151)
	if got < floor {
		t.Errorf("rounded minimum %d below unrounded floor %d", got, floor)
	}
	if got%pol.RoundingStep != 0 {
		t.Errorf("minimum %d not on rounding step %d", got, pol.RoundingStep)
	}
}

func TestMinimumPriceMonotonicInStock(t *testing.T) {
	// More stock must never raise the minimum acceptable price.
	pol := policy.Default()
	prev := int64(-1)
	for stock := 100; stock >= 0; stock-- {
		got, _, err := MinimumPrice(product(2500000, 0, stock), pol)
		if err != nil {
			t.Fatal(err)
		}
		if prev >= 0 && got < prev {
			t.Fatalf("minimum dropped from %d to %d as stock fell to %d", prev, got, stock)
		}
		prev = got
	}
}

func TestMinimumPriceIdempotent(t *testing.T) {
	pol := policy.Default()
	p := product(2500000, 2200000, 8)

	first, tag1, err := MinimumPrice(p, pol)
	if err != nil {
		t.Fatal(err)
	}
	second, tag2, err := MinimumPrice(p, pol)
	if err != nil {
		t.Fatal(err)
	}
	if first != second || tag1 != tag2 {
		t.Errorf("repeat call diverged: (%d, %s) vs (%d, %s)", first, tag1, second, tag2)
	}
}

func TestMinimumPriceInvalidProduct(t *testing.T) {
	pol := policy.Default()

	tests := []struct {
		name    string
		product *model.Product
	}{
		{"nil product", nil},
		{"negative stock", product(1000000, 0, -3)},
		{"zero price", product(0, 0, 5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := MinimumPrice(tt.product, pol)
			if !errors.Is(err, model.ErrInvalidProduct) {
				t.Errorf("expected ErrInvalidProduct, got %v", err)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	minimum := int64(2125000) // ₹21,250

	tests := []struct {
		name        string
		offer       *int64
		wantOutcome model.Outcome
		wantPrice   int64
	}{
		{"offer above minimum accepted at offer", offerOf(2200000), model.OutcomeAccepted, 2200000},
		{"offer exactly at minimum accepted", offerOf(2125000), model.OutcomeAccepted, 2125000},
		{"one paisa below countered", offerOf(2124999), model.OutcomeCountered, 2125000},
		{"lowball countered at minimum", offerOf(2000000), model.OutcomeCountered, 2125000},
		{"bare discount request countered", nil, model.OutcomeCountered, 2125000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.offer, minimum, model.ReasonHighStockBand)
			if d.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %s, want %s", d.Outcome, tt.wantOutcome)
			}
			if d.ResolvedPrice != tt.wantPrice {
				t.Errorf("ResolvedPrice = %d, want %d", d.ResolvedPrice, tt.wantPrice)
			}
			if d.MinimumPrice != minimum {
				t.Errorf("MinimumPrice = %d, want %d", d.MinimumPrice, minimum)
			}
		})
	}
}
