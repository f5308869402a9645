package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type SolverParameters struct {
	Title         string  `yaml:"Title"`
	Model         string  `yaml:"Model"`
	GridSize      int     `yaml:"GridSize"`
	MinDepth      int     `yaml:"MinDepth"`
	MaxDepth      int     `yaml:"MaxDepth"`
	StencilOrder  int     `yaml:"StencilOrder"`
	MaxRelaxIters int     `yaml:"MaxRelaxIters"`
	Tolerance     float64 `yaml:"Tolerance"`
	VCycles       int     `yaml:"VCycles"`
	DomainLength  float64 `yaml:"DomainLength"`
}

func (sp *SolverParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, sp)
}

func (sp *SolverParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", sp.Title)
	fmt.Printf("[%s]\t\t= Model\n", sp.Model)
	fmt.Printf("[%d]\t\t\t= Grid Size\n", sp.GridSize)
	fmt.Printf("[%d, %d]\t\t\t= Depth Bounds\n", sp.MinDepth, sp.MaxDepth)
	fmt.Printf("[%d]\t\t\t= Stencil Order\n", sp.StencilOrder)
	fmt.Printf("[%d]\t\t\t= Max Relaxation Iterations\n", sp.MaxRelaxIters)
	fmt.Printf("%8.2e\t\t= Tolerance\n", sp.Tolerance)
	fmt.Printf("[%d]\t\t\t= V-Cycles\n", sp.VCycles)
	fmt.Printf("%8.5f\t\t= Domain Length\n", sp.DomainLength)
}
