// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// evtgen generates the CUDA program of a CUTLASS GEMM fused with a point-wise epilogue,
// and prints it along with a table of the kernels defined.
//
// Example:
//
//	$ evtgen -dtype=float16 -epilogue=relu -m=1024 -n=512 -k=256
//
// The code generation is configured by -config, or by the EVTGEN_CONFIG environment
// variable if -config is not set. E.g.: `-config="descriptive_names,cache_dir=~/.cache/evtgen"`.
package main

import (
	"flag"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/evtgen/pkg/codegen"
	"github.com/gomlx/evtgen/pkg/codegen/cuda"
	"github.com/gomlx/evtgen/pkg/core/loopir"
	"github.com/gomlx/evtgen/pkg/core/symbolic"
	"github.com/gomlx/evtgen/pkg/scheduler"
	"github.com/gomlx/evtgen/pkg/support/fsutil"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

var (
	flagConfig = flag.String("config", "",
		fmt.Sprintf("Code generation configuration. If empty, it is read from $%s.", codegen.EVTGEN_CONFIG))
	flagDType        = flag.String("dtype", "float32", "DType of the GEMM: float32, float16 or bfloat16.")
	flagM            = flag.Int("m", 1024, "Number of rows of the GEMM output.")
	flagN            = flag.Int("n", 1024, "Number of columns of the GEMM output.")
	flagK            = flag.Int("k", 512, "Contracting dimension of the GEMM.")
	flagEpilogue     = flag.String("epilogue", "bias_add", "Epilogue fused to the GEMM: bias_add, relu or scale_shift.")
	flagProgram      = flag.Bool("program", true, "Print the generated program.")
	flagWriteKernels = flag.Bool("write_kernels", false, "Write the kernel sources to the configured cache directory.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	config := must.M1(readConfig())
	dtype := must.M1(dtypes.DTypeString(*flagDType))
	session := codegen.NewSession(config)
	must.M(generate(session, dtype))

	if *flagProgram {
		fmt.Println(session.Program())
	}
	reportKernels(session)
	if *flagWriteKernels {
		must.M(writeKernels(session))
	}
}

// writeKernels writes the source of each kernel defined in the session to its path.
func writeKernels(session *codegen.Session) error {
	for _, kernel := range session.Kernels() {
		if kernel.Path == "" {
			klog.Warningf("Kernel %q has no path, not written", kernel.Name)
			continue
		}
		if err := fsutil.WriteFile(kernel.Path, kernel.Source); err != nil {
			return errors.WithMessagef(err, "writing kernel %q", kernel.Name)
		}
		klog.Infof("Kernel %q written to %s", kernel.Name, kernel.Path)
	}
	return nil
}

func readConfig() (codegen.Config, error) {
	if *flagConfig != "" {
		return codegen.ParseConfig(*flagConfig)
	}
	return codegen.ConfigFromEnv()
}

// generate writes to the session the program of a GEMM fused with the selected epilogue.
func generate(session *codegen.Session, dtype dtypes.DType) error {
	bufIdx := 0
	nextName := func() string {
		name := fmt.Sprintf("buf%d", bufIdx)
		bufIdx++
		return name
	}
	gemm := cuda.NewGemmTemplate(nextName(), dtype, "arg0_1", "arg1_1", *flagM, *flagN, *flagK,
		loopir.Origin{Name: "mm", Op: "aten.mm"})
	epilogues, err := makeEpilogues(*flagEpilogue, gemm, nextName)
	if err != nil {
		return err
	}

	sched := scheduler.New(session, epilogues[len(epilogues)-1].Name())
	templateNode := sched.AddNode(gemm)
	epilogueNodes := make([]scheduler.Node, 0, len(epilogues))
	for _, epilogue := range epilogues {
		epilogueNodes = append(epilogueNodes, sched.AddNode(epilogue))
	}
	scheduling := cuda.NewScheduling(session, sched)
	if err := scheduling.CodegenTemplate(templateNode, epilogueNodes); err != nil {
		return errors.WithMessagef(err, "generating GEMM with epilogue %q", *flagEpilogue)
	}
	return nil
}

// makeEpilogues returns the point-wise nodes fused to gemm for the named epilogue.
func makeEpilogues(epilogue string, gemm *cuda.GemmTemplate, nextName func() string) ([]*loopir.ComputedBuffer, error) {
	ranges := []int{gemm.M, gemm.N}
	dtype := gemm.DType()
	pointwise := func(op string, fn func(idx symbolic.Expr) loopir.Expr) *loopir.ComputedBuffer {
		name := nextName()
		return loopir.NewComputedBuffer(name, dtype, ranges,
			func(index, _ []symbolic.Expr) loopir.Expr { return fn(symbolic.Linear(index, ranges)) },
			loopir.Origin{Name: fmt.Sprintf("%s_%s", op, name), Op: "aten." + op})
	}
	output := gemm.Name()
	switch epilogue {
	case "bias_add":
		return []*loopir.ComputedBuffer{pointwise("add", func(idx symbolic.Expr) loopir.Expr {
			return loopir.Add(loopir.NewLoad(output, idx), loopir.NewLoad("arg2_1", idx))
		})}, nil
	case "relu":
		return []*loopir.ComputedBuffer{pointwise("relu", func(idx symbolic.Expr) loopir.Expr {
			x := loopir.NewLoad(output, idx)
			return loopir.Mul(x, loopir.Ge(loopir.NewLoad(output, idx), loopir.NewConstant(0.0, dtype)))
		})}, nil
	case "scale_shift":
		return []*loopir.ComputedBuffer{
			pointwise("mul", func(idx symbolic.Expr) loopir.Expr {
				return loopir.Mul(loopir.NewLoad(output, idx), loopir.NewConstant(0.5, dtype))
			}),
			pointwise("sub", func(idx symbolic.Expr) loopir.Expr {
				return loopir.Sub(loopir.NewLoad(output, idx), loopir.NewConstant(1e-05, dtype))
			}),
		}, nil
	default:
		return nil, errors.Errorf("unknown -epilogue=%q", epilogue)
	}
}

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)
	oddRowStyle = lipgloss.NewStyle().Faint(false).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Faint(true).
			PaddingLeft(1).PaddingRight(1)
)

func reportKernels(session *codegen.Session) {
	table := lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row < 0 {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			if col == 1 {
				s = s.Align(lipgloss.Right)
			}
			return
		}).
		Headers("Kernel", "Code", "Path")
	for _, kernel := range session.Kernels() {
		table.Row(kernel.Name, humanize.Bytes(uint64(len(kernel.Code))), kernel.Path)
	}
	fmt.Println(table.Render())
	fmt.Printf("%d kernel(s) defined for %d distinct source(s), session %s\n",
		len(session.Kernels()), session.NumCachedKernels(), session.ID())
}
