package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-reseller-ws/internal/model"
)

func TestStorefrontService_Get(t *testing.T) {
	ctx := context.Background()
	f := newCatalogFixture()
	users := newFakeUserRepo()
	require.NoError(t, users.Create(ctx, &model.User{
		BaseModel: model.BaseModel{ID: f.resellerID},
		Username:  "sari.jualan",
		FullName:  "Sari",
		Role:      model.RoleReseller,
		IsActive:  true,
		SocialLinks: []model.SocialLink{
			{Platform: model.PlatformInstagram, URL: "https://instagram.com/sari"},
		},
	}))
	require.NoError(t, users.Create(ctx, &model.User{Username: "brand.co", Role: model.RoleBrand, IsActive: true}))

	svc := NewStorefrontService(users, f.catalog)

	front, err := svc.Get(ctx, "Sari.Jualan")
	require.NoError(t, err)
	assert.Equal(t, "sari.jualan", front.Profile.Username)
	require.Len(t, front.Profile.SocialLinks, 1)
	assert.Equal(t, model.PlatformInstagram.Icon(), front.Profile.SocialLinks[0].Icon)

	require.Len(t, front.Products, 1)
	assert.Equal(t, "Kemeja", front.Products[0].Name)
	assert.Equal(t, int64(250000), front.Products[0].Price)

	_, err = svc.Get(ctx, "brand.co")
	assert.ErrorIs(t, err, ErrStorefrontNotFound)
	_, err = svc.Get(ctx, "nobody")
	assert.ErrorIs(t, err, ErrStorefrontNotFound)
}
