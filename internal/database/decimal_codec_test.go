package database

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

type pricedDoc struct {
	Value    decimal.Decimal  `bson:"value"`
	Approved *decimal.Decimal `bson:"approved"`
}

func TestDecimalStoredAsDecimal128(t *testing.T) {
	reg := NewRegistry()
	approved := decimal.RequireFromString("99.90")

	raw, err := bson.MarshalWithRegistry(reg, pricedDoc{Value: decimal.RequireFromString("150.25"), Approved: &approved})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if typ := bson.Raw(raw).Lookup("value").Type; typ != bsontype.Decimal128 {
		t.Fatalf("value stored as %v, want Decimal128", typ)
	}

	var got pricedDoc
	if err := bson.UnmarshalWithRegistry(reg, raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Value.Equal(decimal.RequireFromString("150.25")) {
		t.Errorf("Value = %s, want 150.25", got.Value)
	}
	if got.Approved == nil || !got.Approved.Equal(approved) {
		t.Errorf("Approved = %v, want 99.90", got.Approved)
	}
}

func TestNilDecimalPointerStoredAsNull(t *testing.T) {
	reg := NewRegistry()

	raw, err := bson.MarshalWithRegistry(reg, pricedDoc{Value: decimal.Zero})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got pricedDoc
	if err := bson.UnmarshalWithRegistry(reg, raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Approved != nil {
		t.Errorf("Approved = %v, want nil", got.Approved)
	}
}

func TestDecimalDecodesLegacyDouble(t *testing.T) {
	reg := NewRegistry()

	raw, err := bson.Marshal(bson.M{"value": 12.5})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got pricedDoc
	if err := bson.UnmarshalWithRegistry(reg, raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Value.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("Value = %s, want 12.5", got.Value)
	}
}
