package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoSlot_BoundSection(t *testing.T) {
	// Четыре слота привязаны к типам секций, end_of_page — к концу страницы
	bound := 0
	for _, slot := range PromoSlots {
		assert.True(t, slot.IsValid())
		if _, ok := slot.BoundSection(); ok {
			bound++
		}
	}
	assert.Len(t, PromoSlots, 5)
	assert.Equal(t, 4, bound)

	_, ok := SlotEndOfPage.BoundSection()
	assert.False(t, ok)

	sectionType, ok := SlotAfterBestSellers.BoundSection()
	require.True(t, ok)
	assert.Equal(t, SectionBestSellers, sectionType)
}

func TestSlotForSection(t *testing.T) {
	slot, ok := SlotForSection(SectionCategories)
	require.True(t, ok)
	assert.Equal(t, SlotAfterCategories, slot)

	_, ok = SlotForSection(SectionTrending)
	assert.False(t, ok)
}

func TestSectionType_IsValid(t *testing.T) {
	assert.True(t, SectionCategoryProducts.IsValid())
	assert.False(t, SectionType("hero").IsValid())
	assert.False(t, PromoSlot("sidebar").IsValid())
}

func TestStringArray_ScanAndValue(t *testing.T) {
	var arr StringArray
	require.NoError(t, arr.Scan([]byte(`["a.png","b.png"]`)))
	assert.Equal(t, StringArray{"a.png", "b.png"}, arr)
	assert.Equal(t, "a.png", arr.First())

	require.NoError(t, arr.Scan(nil))
	assert.Empty(t, arr)

	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	assert.Error(t, arr.Scan(42))
}

func TestAdminUser_Password(t *testing.T) {
	u := &AdminUser{Email: "admin@shop.test"}
	require.NoError(t, u.SetPassword("s3cret!"))
	assert.NotEqual(t, "s3cret!", u.PasswordHash)
	assert.True(t, u.CheckPassword("s3cret!"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestProduct_InStock(t *testing.T) {
	p := &Product{Stock: 3}
	assert.True(t, p.InStock(3))
	assert.False(t, p.InStock(4))
	assert.False(t, p.InStock(0))
}
