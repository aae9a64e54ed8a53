package views

import (
	"context"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/models"
)

type ProfileModel struct {
	// Profile is nil when it could not be loaded.
	Profile *models.Profile
}

type Profile struct {
	*Synchronizer[ProfileModel]
}

func NewProfile(c client.Client, epoch EpochSource, opts ...Option) *Profile {
	o := buildOptions(opts)
	return &Profile{newSynchronizer(ProfileView, epoch, o, func(ctx context.Context, fs *fetchSet) ProfileModel {
		var m ProfileModel
		read(fs, SliceProfile, &m.Profile, nil, c.GetProfile)
		fs.wait()
		return m
	})}
}
