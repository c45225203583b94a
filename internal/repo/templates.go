package repo

import "github.com/starford/lkr/internal/models"

var templates = map[models.EntryType]string{
	models.TypeQAndA: `## Question

<!-- What specific problem or question does this address? -->

## Answers

### Answer 1

<!-- Describe the solution -->

## Common Pitfalls

<!-- What mistakes do people commonly make? -->

## See Also

<!-- Related entries or external links -->
`,
	models.TypeGuide: `## Overview

<!-- Brief description of what this guide covers -->

## Prerequisites

## Steps

### Step 1

## Troubleshooting
`,
	models.TypePattern: `## Problem

## Solution

## When to Use

## Trade-offs
`,
	models.TypeNote: `## Summary

## Details
`,
}

// Template returns the body skeleton for typ.
func Template(typ models.EntryType) string {
	return templates[typ]
}
