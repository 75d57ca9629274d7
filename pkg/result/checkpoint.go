package result

import (
	"encoding/gob"
	"os"

	"github.com/oisee/superopt64/pkg/inst"
)

// Checkpoint holds state for resuming a batch search across targets.
type Checkpoint struct {
	Rules           []Rule
	CompletedTarget int // number of target sequences fully searched
	TargetLen       int // current target length being searched
}

func init() {
	gob.Register(inst.Instruction{})
	gob.Register(inst.OpCode(0))
	gob.Register(inst.RegSet(0))
}

// SaveCheckpoint writes search state to path.
func SaveCheckpoint(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(ckpt)
}

// LoadCheckpoint reads search state from path.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, err
	}
	return &ckpt, nil
}
