package llvm

import (
	"strings"

	"github.com/amdgpu-tools/disassembler/internal/codeobject"
)

// target is a parsed ISA name such as amdgcn-amd-amdhsa--gfx90a:xnack+.
type target struct {
	triple    string
	processor string
	features  []string
}

func parseISA(isa string) (target, error) {
	triple, proc, ok := strings.Cut(isa, "--")
	if !ok || proc == "" {
		return target{}, codeobject.Errorf(codeobject.StatusInvalidArgument, "set isa name: malformed ISA %q", isa)
	}

	parts := strings.Split(triple, "-")
	if len(parts) != 3 || parts[0] != "amdgcn" || parts[1] != "amd" {
		return target{}, codeobject.Errorf(codeobject.StatusInvalidArgument, "set isa name: unsupported triple %q", triple)
	}

	fields := strings.Split(proc, ":")
	t := target{triple: triple, processor: fields[0]}
	if !strings.HasPrefix(t.processor, "gfx") {
		return target{}, codeobject.Errorf(codeobject.StatusInvalidArgument, "set isa name: unknown processor %q", t.processor)
	}

	for _, f := range fields[1:] {
		if len(f) < 2 {
			return target{}, codeobject.Errorf(codeobject.StatusInvalidArgument, "set isa name: bad feature %q", f)
		}
		// xnack+ becomes +xnack.
		sign := f[len(f)-1]
		if sign != '+' && sign != '-' {
			return target{}, codeobject.Errorf(codeobject.StatusInvalidArgument, "set isa name: bad feature %q", f)
		}
		t.features = append(t.features, string(sign)+f[:len(f)-1])
	}

	return t, nil
}

func (t target) objdumpArgs() []string {
	args := []string{
		"--disassemble",
		"--triple=" + t.triple,
		"--mcpu=" + t.processor,
	}
	if len(t.features) > 0 {
		args = append(args, "--mattr="+strings.Join(t.features, ","))
	}
	return args
}
