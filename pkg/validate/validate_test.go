package validate_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/bazaar/pkg/validate"
)

type productInput struct {
	Name     string          `json:"name"     validate:"required,max=20"`
	Price    decimal.Decimal `json:"price"    validate:"gt=0"`
	Stock    int             `json:"stock"    validate:"gte=0"`
	Discount int             `json:"discount" validate:"between=0,100"`
	Status   string          `json:"status"   validate:"required,in=ACTIVE,INACTIVE"`
	Tags     string          `json:"tags"     validate:"nullable,json"`
}

func validProduct() productInput {
	return productInput{
		Name:     "Kettle",
		Price:    decimal.RequireFromString("1500.00"),
		Stock:    3,
		Discount: 10,
		Status:   "ACTIVE",
	}
}

func TestValidInput(t *testing.T) {
	if errs := validate.Struct(validProduct()); validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(productInput{})
	if _, ok := errs["name"]; !ok {
		t.Error("expected name to be required")
	}
	if _, ok := errs["price"]; !ok {
		t.Error("expected zero price to fail gt=0")
	}
	if _, ok := errs["status"]; !ok {
		t.Error("expected status to be required")
	}
}

func TestDecimalComparisonIsExact(t *testing.T) {
	in := validProduct()
	in.Price = decimal.RequireFromString("0.01")
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		t.Errorf("expected 0.01 > 0 to pass, got: %v", errs)
	}
	in.Price = decimal.RequireFromString("-0.01")
	if _, ok := validate.Struct(in)["price"]; !ok {
		t.Error("expected negative price to fail")
	}
}

func TestNumericBounds(t *testing.T) {
	in := validProduct()
	in.Stock = -1
	if _, ok := validate.Struct(in)["stock"]; !ok {
		t.Error("expected negative stock to fail")
	}
	in = validProduct()
	in.Discount = 101
	if _, ok := validate.Struct(in)["discount"]; !ok {
		t.Error("expected discount > 100 to fail")
	}
	in.Discount = 100
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		t.Errorf("expected discount 100 to pass: %v", errs)
	}
}

func TestInRule(t *testing.T) {
	in := validProduct()
	in.Status = "ARCHIVED"
	if _, ok := validate.Struct(in)["status"]; !ok {
		t.Error("expected unknown status to fail")
	}
}

func TestNullableSkipsRules(t *testing.T) {
	in := validProduct()
	in.Tags = ""
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable to pass: %v", errs)
	}
	in.Tags = "{not json"
	if _, ok := validate.Struct(in)["tags"]; !ok {
		t.Error("expected invalid JSON to fail")
	}
	in.Tags = `["kitchen","steel"]`
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		t.Errorf("expected valid JSON to pass: %v", errs)
	}
}

func TestMaxLength(t *testing.T) {
	in := validProduct()
	in.Name = "an extremely long product name"
	if _, ok := validate.Struct(in)["name"]; !ok {
		t.Error("expected long name to fail")
	}
}

func TestEmbeddedStructsAreWalked(t *testing.T) {
	type Contact struct {
		Phone string `json:"phone" validate:"required,phone"`
	}
	type vendor struct {
		Contact
		Email string `json:"email" validate:"required,email"`
	}
	errs := validate.Struct(vendor{Contact: Contact{Phone: "abc"}, Email: "shop@example.com"})
	if _, ok := errs["phone"]; !ok {
		t.Error("expected embedded phone rule to run")
	}
	errs = validate.Struct(&vendor{Contact: Contact{Phone: "+91 98765-43210"}, Email: "shop@example.com"})
	if validate.HasErrors(errs) {
		t.Errorf("expected valid vendor to pass: %v", errs)
	}
}

func TestUntaggedFieldNamesAreSnakeCased(t *testing.T) {
	type line struct {
		UnitPrice decimal.Decimal `validate:"gte=0"`
	}
	errs := validate.Struct(line{UnitPrice: decimal.NewFromInt(-5)})
	if _, ok := errs["unit_price"]; !ok {
		t.Errorf("expected unit_price key, got: %v", errs)
	}
}
