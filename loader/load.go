package loader

import (
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfload/models"
)

var UnknownMagic = errors.New("could not identify file magic")

var loaders = []struct {
	match func(p []byte) bool
	load  func(p []byte) (models.Loader, error)
}{
	{MatchElf, NewElfLoader},
}

// Load picks a loader for an in-memory image by magic.
func Load(p []byte) (models.Loader, error) {
	for _, l := range loaders {
		if l.match(p) {
			return l.load(p)
		}
	}
	return nil, UnknownMagic
}

func LoadFile(path string) (models.Loader, error) {
	p, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(p)
}
