package tx

import (
	"context"
	"database/sql"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	if _, ok := From(ctx); ok {
		t.Fatal("expected no transaction in a fresh context")
	}

	stored := &sql.Tx{}
	ctx = WithTx(ctx, stored)
	got, ok := From(ctx)
	if !ok || got != stored {
		t.Fatal("expected the stored transaction back")
	}
}

func TestNilTxIsNotStored(t *testing.T) {
	ctx := WithTx(context.Background(), nil)
	if _, ok := From(ctx); ok {
		t.Fatal("nil transactions must not be stored")
	}
}
