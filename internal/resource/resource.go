// Package resource implements the two-dimensional resource algebra used
// throughout the simulator: non-negative (cpu, mem) vectors under the
// componentwise partial order.
package resource

// Resource is a non-negative (cpu, mem) vector. The zero value is the
// empty resource (0, 0).
type Resource struct {
	CPU int
	Mem int
}

// Add returns a + b.
func (a Resource) Add(b Resource) Resource {
	return Resource{CPU: a.CPU + b.CPU, Mem: a.Mem + b.Mem}
}

// Sub returns a - b. The caller must ensure the result stays non-negative;
// Sub itself does not clamp or validate.
func (a Resource) Sub(b Resource) Resource {
	return Resource{CPU: a.CPU - b.CPU, Mem: a.Mem - b.Mem}
}

// LessEq reports whether a <= b componentwise. LessEq and GreaterEq are a
// partial order: for two arbitrary resources neither may hold.
func (a Resource) LessEq(b Resource) bool {
	return a.CPU <= b.CPU && a.Mem <= b.Mem
}

// GreaterEq reports whether a >= b componentwise.
func (a Resource) GreaterEq(b Resource) bool {
	return a.CPU >= b.CPU && a.Mem >= b.Mem
}

// Equal reports componentwise equality.
func (a Resource) Equal(b Resource) bool {
	return a.CPU == b.CPU && a.Mem == b.Mem
}

// Min returns the componentwise minimum of a and b.
func (a Resource) Min(b Resource) Resource {
	return Resource{CPU: min(a.CPU, b.CPU), Mem: min(a.Mem, b.Mem)}
}

// Zero is the additive identity (0, 0).
var Zero = Resource{}
