package estimate

import (
	"fmt"
	"regexp"
)

// Counter estimates the operations a piece of content would generate.
type Counter interface {
	Count(content []byte) Operations
}

// SizeCounter is implemented by counters that only need the content length, so callers can
// stat a file instead of reading it.
type SizeCounter interface {
	CountSize(size int64) Operations
}

// Rule weights every match of Pattern by a fixed number of operations per class.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	ClassA  int64
	ClassB  int64
	Free    int64
}

// NewRule compiles pattern into a Rule.
func NewRule(name, pattern string, classA, classB, free int64) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("failed to compile pattern for rule %s: %w", name, err)
	}

	if classA < 0 || classB < 0 || free < 0 {
		return Rule{}, fmt.Errorf("rule %s: weights must not be negative", name)
	}

	return Rule{Name: name, Pattern: re, ClassA: classA, ClassB: classB, Free: free}, nil
}

// PatternCounter counts call sites in source text. Every run starts from Baseline, which
// stands for the listing a gateway performs when the program starts.
type PatternCounter struct {
	Baseline Operations
	Rules    []Rule
}

var _ Counter = (*PatternCounter)(nil)

func (c *PatternCounter) Count(content []byte) Operations {
	ops := Operations{}
	ops.Merge(c.Baseline)

	for _, rule := range c.Rules {
		matches := int64(len(rule.Pattern.FindAllIndex(content, -1)))
		if matches == 0 {
			continue
		}

		ops.Add(ClassA, rule.ClassA*matches)
		ops.Add(ClassB, rule.ClassB*matches)
		ops.Add(Free, rule.Free*matches)
	}

	return ops
}

// DefaultBytesPerOperation is the size heuristic for binaries: one request per KiB.
const DefaultBytesPerOperation = 1024

// BinaryCounter estimates compiled programs from their size alone, split evenly between
// Class A and Class B.
type BinaryCounter struct {
	BytesPerOperation int64
}

var (
	_ Counter     = (*BinaryCounter)(nil)
	_ SizeCounter = (*BinaryCounter)(nil)
)

func (c *BinaryCounter) Count(content []byte) Operations {
	return c.CountSize(int64(len(content)))
}

func (c *BinaryCounter) CountSize(size int64) Operations {
	per := c.BytesPerOperation
	if per <= 0 {
		per = DefaultBytesPerOperation
	}

	estimated := size / per

	ops := Operations{}
	ops.Add(ClassA, estimated/2)
	ops.Add(ClassB, estimated/2)

	return ops
}
