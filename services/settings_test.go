package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDepositAmounts(t *testing.T) {
	amounts, err := ParseDepositAmounts(`[10, 25, 50, 100]`)
	assert.NoError(t, err)
	assert.Equal(t, []int{10, 25, 50, 100}, amounts)

	_, err = ParseDepositAmounts(`[]`)
	assert.Error(t, err)

	_, err = ParseDepositAmounts(`not json`)
	assert.Error(t, err)

	_, err = ParseDepositAmounts(`{"a": 1}`)
	assert.Error(t, err)
}
