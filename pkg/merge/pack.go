package merge

import (
	"os"

	"github.com/JasperZebra/avatar-pak/pkg/pak"
)

// Merge plans the layered merge of mods into a scratch directory and then
// packs the result to destPak, cleaning the scratch directory up
// afterward regardless of outcome.
func Merge(mods []ModDir, scratchDir, destPak string, opts ...pak.PackerOption) (*Result, *pak.PackReport, error) {
	defer os.RemoveAll(scratchDir)
	result, err := Plan(mods, scratchDir)
	if err != nil {
		return nil, nil, err
	}

	packer := pak.NewPacker(opts...)
	report, err := packer.Pack(scratchDir, destPak)
	if err != nil {
		return result, nil, err
	}
	return result, report, nil
}
