package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals([]CartLine{
		{ProductID: "a", Price: 10, Quantity: 2},
		{ProductID: "b", Price: 5, Quantity: 3},
	})
	assert.Equal(t, 5, totals.Count)
	assert.Equal(t, 35.0, totals.Amount)
	assert.Equal(t, "35.00", totals.Display())
}

func TestComputeTotalsRoundsToCents(t *testing.T) {
	totals := ComputeTotals([]CartLine{{ProductID: "p1", Price: 9.99, Quantity: 3}})
	assert.Equal(t, 3, totals.Count)
	assert.Equal(t, 29.97, totals.Amount)
	assert.Equal(t, "29.97", totals.Display())
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil)
	assert.Zero(t, totals.Count)
	assert.Equal(t, "0.00", totals.Display())
}

func TestValidQuantity(t *testing.T) {
	assert.False(t, ValidQuantity(0))
	assert.True(t, ValidQuantity(1))
	assert.True(t, ValidQuantity(100))
	assert.False(t, ValidQuantity(101))
	assert.False(t, ValidQuantity(-3))
}

func TestShippingApplyClampsNegatives(t *testing.T) {
	var l CartLine
	Shipping{Weight: 1.5, Width: -2, Height: math.NaN(), Length: 30}.Apply(&l)
	assert.Equal(t, 1.5, l.Weight)
	assert.Zero(t, l.Width)
	assert.Zero(t, l.Height)
	assert.Equal(t, 30.0, l.Length)
}

func TestCartLineWireFormat(t *testing.T) {
	b, err := json.Marshal(CartLine{ProductID: "p1", Name: "Honey", Price: 4.5, Quantity: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"productId":"p1","name":"Honey","price":4.5,"quantity":2}`, string(b))

	var l CartLine
	require.NoError(t, json.Unmarshal([]byte(`{"productId":"p2","name":"Comb","price":12,"quantity":1,"weight":0.4}`), &l))
	assert.Equal(t, 0.4, l.Weight)
	assert.Zero(t, l.Width)
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "accepted", Accepted.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.True(t, Accepted.Ok())
	assert.False(t, Rejected.Ok())
}
