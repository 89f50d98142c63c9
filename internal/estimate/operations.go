// Package estimate approximates how many billable object-storage requests a program would
// issue when run against a filesystem gateway backed by a bucket.
//
// The numbers are rough. Multipliers and the size heuristic for binaries come from how a
// gateway typically translates filesystem calls (a stat becomes two object gets, a new file
// becomes an empty insert plus an insert on close) and have not been checked against real
// bills.
package estimate

import "fmt"

// Class is a billing category for a storage request.
type Class string

const (
	// ClassA covers listing and mutating requests (list, insert).
	ClassA Class = "class_a"
	// ClassB covers read requests (get).
	ClassB Class = "class_b"
	// Free covers requests that are not billed (delete).
	Free Class = "free"
)

// Operations accumulates estimated request counts per class. Counters only ever grow.
type Operations struct {
	ClassA int64 `json:"class_a"`
	ClassB int64 `json:"class_b"`
	Free   int64 `json:"free"`
}

// Add increments the counter for class by count. Non-positive counts are ignored and any
// class other than ClassA or ClassB is counted as free.
func (o *Operations) Add(class Class, count int64) {
	if count <= 0 {
		return
	}

	switch class {
	case ClassA:
		o.ClassA += count
	case ClassB:
		o.ClassB += count
	default:
		o.Free += count
	}
}

// Merge adds every counter of other into o.
func (o *Operations) Merge(other Operations) {
	o.Add(ClassA, other.ClassA)
	o.Add(ClassB, other.ClassB)
	o.Add(Free, other.Free)
}

// Total returns the number of billable operations; free operations are excluded.
func (o Operations) Total() int64 {
	return o.ClassA + o.ClassB
}

func (o Operations) String() string {
	return fmt.Sprintf("class_a=%d class_b=%d free=%d", o.ClassA, o.ClassB, o.Free)
}
