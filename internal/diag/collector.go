package diag

// Collector accumulates diagnostics across pipeline stages. The zero value
// is ready to use. Collector is not safe for concurrent use; per-backend
// stages each own a collector and merge afterwards.
type Collector struct {
	diags []*Diagnostic
}

// Add records a diagnostic. Nil diagnostics are ignored.
func (c *Collector) Add(d *Diagnostic) {
	if d != nil {
		c.diags = append(c.diags, d)
	}
}

// Merge appends every diagnostic from other.
func (c *Collector) Merge(other *Collector) {
	c.diags = append(c.diags, other.diags...)
}

// All returns every collected diagnostic in arrival order.
func (c *Collector) All() []*Diagnostic {
	return c.diags
}

// Warnings returns the collected warnings.
func (c *Collector) Warnings() []*Diagnostic {
	return c.filter(SeverityWarning)
}

// Fatals returns the collected fatal diagnostics.
func (c *Collector) Fatals() []*Diagnostic {
	return c.filter(SeverityFatal)
}

// HasFatal reports whether any fatal diagnostic was collected.
func (c *Collector) HasFatal() bool {
	for _, d := range c.diags {
		if d.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

func (c *Collector) filter(sev Severity) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range c.diags {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}
