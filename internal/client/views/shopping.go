package views

import (
	"context"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/models"
)

type ShoppingModel struct {
	Items []models.ShoppingItem
}

type Shopping struct {
	*Synchronizer[ShoppingModel]
}

func NewShopping(c client.Client, epoch EpochSource, opts ...Option) *Shopping {
	o := buildOptions(opts)
	return &Shopping{newSynchronizer(ShoppingView, epoch, o, func(ctx context.Context, fs *fetchSet) ShoppingModel {
		var m ShoppingModel
		read(fs, SliceItems, &m.Items, []models.ShoppingItem{}, c.ListShoppingItems)
		fs.wait()
		return m
	})}
}
