package registry

import (
	"encoding/json"
	"os"
)

func Load(path string) (*StepRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg StepRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}
