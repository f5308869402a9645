/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/jbcm627/elliptic-solver/InputParameters"
	"github.com/jbcm627/elliptic-solver/model_problems/CoupledFields"
	"github.com/jbcm627/elliptic-solver/model_problems/NonlinearPoisson"
	"github.com/jbcm627/elliptic-solver/model_problems/Poisson"
)

// SolveCmd represents the solve command
var SolveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Multigrid solutions of elliptic model problems",
	Long: `
Executes the FAS multigrid solver for a variety of elliptic model problems,

elliptic-solver solve `,
	Run: func(cmd *cobra.Command, args []string) {
		ms := &ModelSolve{}
		fmt.Println("solve called")
		mr, _ := cmd.Flags().GetInt("model")
		ms.ModelRun = ModelType(mr)
		ms.N, _ = cmd.Flags().GetInt("n")
		ms.MinDepth, _ = cmd.Flags().GetInt("minDepth")
		ms.MaxDepth, _ = cmd.Flags().GetInt("maxDepth")
		ms.Order, _ = cmd.Flags().GetInt("order")
		ms.MaxRelaxIters, _ = cmd.Flags().GetInt("iters")
		ms.Cycles, _ = cmd.Flags().GetInt("cycles")
		ms.Tolerance, _ = cmd.Flags().GetFloat64("tolerance")
		ms.ParamFile, _ = cmd.Flags().GetString("input")
		ms.Profile, _ = cmd.Flags().GetBool("profile")
		if ms.ParamFile != "" {
			if err := ms.loadParameters(); err != nil {
				panic(err)
			}
		}
		RunSolve(ms)
	},
}

func init() {
	rootCmd.AddCommand(SolveCmd)
	var (
		N        = 0
		ModelRun = M_Poisson
	)
	N, MinDepth, MaxDepth, Order, Iters, Cycles, Tol := Defaults(ModelRun)
	SolveCmd.Flags().IntP("model", "m", int(ModelRun), "model to run: 0 = Poisson, 1 = NonlinearPoisson, 2 = CoupledFields")
	SolveCmd.Flags().IntP("n", "n", N, "finest grid points per axis")
	SolveCmd.Flags().Int("minDepth", MinDepth, "coarsest multigrid depth")
	SolveCmd.Flags().Int("maxDepth", MaxDepth, "finest multigrid depth")
	SolveCmd.Flags().IntP("order", "o", Order, "finite difference stencil order: 2, 4, 6 or 8")
	SolveCmd.Flags().Int("iters", Iters, "maximum relaxation iterations per depth")
	SolveCmd.Flags().IntP("cycles", "c", Cycles, "number of V-cycles")
	SolveCmd.Flags().Float64P("tolerance", "t", Tol, "relaxation tolerance on the finest grid")
	SolveCmd.Flags().StringP("input", "i", "", "YAML file with solver parameters, overrides flags")
	SolveCmd.Flags().Bool("profile", false, "write a CPU profile for the run")
}

type ModelSolve struct {
	N                  int
	MinDepth, MaxDepth int
	Order              int
	MaxRelaxIters      int
	Cycles             int
	Tolerance          float64
	ModelRun           ModelType
	ParamFile          string
	Profile            bool
}

type ModelType uint8

const (
	M_Poisson ModelType = iota
	M_NonlinearPoisson
	M_CoupledFields
)

var (
	def_N        = []int{32, 32, 16}
	def_MinDepth = []int{2, 2, 2}
	def_MaxDepth = []int{5, 5, 4}
	def_Order    = []int{4, 4, 4}
	def_Iters    = []int{30, 30, 30}
	def_Cycles   = []int{3, 5, 5}
	def_Tol      = []float64{1.e-8, 1.e-8, 1.e-8}

	modelNames = map[string]ModelType{
		"poisson":          M_Poisson,
		"nonlinearpoisson": M_NonlinearPoisson,
		"coupledfields":    M_CoupledFields,
	}
)

func Defaults(model ModelType) (N, MinDepth, MaxDepth, Order, Iters, Cycles int, Tol float64) {
	return def_N[model], def_MinDepth[model], def_MaxDepth[model], def_Order[model],
		def_Iters[model], def_Cycles[model], def_Tol[model]
}

func (ms *ModelSolve) loadParameters() error {
	data, err := os.ReadFile(ms.ParamFile)
	if err != nil {
		return fmt.Errorf("unable to read parameter file: %w", err)
	}
	sp := &InputParameters.SolverParameters{}
	if err = sp.Parse(data); err != nil {
		return fmt.Errorf("unable to parse parameter file: %w", err)
	}
	sp.Print()
	if sp.Model != "" {
		model, ok := modelNames[strings.ToLower(sp.Model)]
		if !ok {
			return fmt.Errorf("unknown model %q", sp.Model)
		}
		ms.ModelRun = model
	}
	if sp.GridSize != 0 {
		ms.N = sp.GridSize
	}
	if sp.MinDepth != 0 {
		ms.MinDepth = sp.MinDepth
	}
	if sp.MaxDepth != 0 {
		ms.MaxDepth = sp.MaxDepth
	}
	if sp.StencilOrder != 0 {
		ms.Order = sp.StencilOrder
	}
	if sp.MaxRelaxIters != 0 {
		ms.MaxRelaxIters = sp.MaxRelaxIters
	}
	if sp.Tolerance != 0 {
		ms.Tolerance = sp.Tolerance
	}
	if sp.VCycles != 0 {
		ms.Cycles = sp.VCycles
	}
	return nil
}

type Model interface {
	Run(cycles int) (maxResidual float64, err error)
}

func RunSolve(ms *ModelSolve) {
	if ms.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}
	var C Model
	switch ms.ModelRun {
	case M_NonlinearPoisson:
		C = NonlinearPoisson.NewNonlinearPoisson(ms.N, ms.MinDepth, ms.MaxDepth, ms.Order, ms.MaxRelaxIters, ms.Tolerance)
	case M_CoupledFields:
		C = CoupledFields.NewCoupledFields(ms.N, ms.MinDepth, ms.MaxDepth, ms.Order, ms.MaxRelaxIters, ms.Tolerance)
	case M_Poisson:
		fallthrough
	default:
		C = Poisson.NewPoisson(ms.N, ms.MinDepth, ms.MaxDepth, ms.Order, ms.MaxRelaxIters, ms.Tolerance)
	}
	if _, err := C.Run(ms.Cycles); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
