// run.go — the sandbox execution protocol.
//
// Hosts that run untrusted expressions (a chat bot worker, a web endpoint)
// speak a one-shot message protocol: program text in, {success, output}
// out. Output is the printed result value on success and the rendered
// error otherwise; the host never needs to distinguish error kinds.
package eurydice

// Result is the reply half of the sandbox protocol. It marshals to the
// wire shape hosts expect.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
}

// Run evaluates programText and folds any failure into the Result. It
// never returns an error: lexical, parse, and eval failures all surface
// as Success=false with the pretty-printed diagnostic (including the
// caret snippet) as Output.
func (ip *Interpreter) Run(programText string) Result {
	v, err := ip.EvalSource(programText)
	if err != nil {
		return Result{Success: false, Output: err.Error()}
	}
	return Result{Success: true, Output: FormatValue(v)}
}
