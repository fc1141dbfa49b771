package tablemodel

// Classifier assigns a role and an alignment to every column
type Classifier struct {
	vocab *matcher
}

// NewClassifier creates a classifier for the given configuration
func NewClassifier(config Config) *Classifier {
	return &Classifier{vocab: compileVocabulary(config.Vocabulary)}
}

// Classify returns exactly one ColumnSpec per header using positional roles
// for the generic layout
func (c *Classifier) Classify(headers []string) []ColumnSpec {
	return c.ClassifyLayout(headers, LayoutGeneric)
}

// ClassifyLayout returns exactly one ColumnSpec per header. Unknown headers
// fall through to a right-aligned numeric column.
func (c *Classifier) ClassifyLayout(headers []string, layout LayoutKind) []ColumnSpec {
	specs := make([]ColumnSpec, len(headers))
	for i, header := range headers {
		normalized := normalizeHeader(header)
		specs[i] = ColumnSpec{
			Index:     i,
			Label:     header,
			Role:      c.role(i, normalized, layout),
			Alignment: c.alignment(i, normalized),
		}
	}
	return specs
}

// alignment evaluates serial, label and right-leaning vocabularies in order
func (c *Classifier) alignment(index int, normalized string) Alignment {
	switch {
	case matchesWord(normalized, c.vocab.serial):
		return AlignCenter
	case index == 1 || matchesWord(normalized, c.vocab.label):
		return AlignLeft
	case matchesWord(normalized, c.vocab.right):
		return AlignRight
	default:
		return AlignRight
	}
}

func (c *Classifier) role(index int, normalized string, layout LayoutKind) Role {
	if layout == LayoutInsurance {
		return c.layoutRole(index)
	}

	if index == 0 || matchesWord(normalized, c.vocab.label) {
		return Role{Kind: RoleRowLabel}
	}
	return Role{Kind: RoleNumericGroup, Group: DefaultGroupName}
}

// layoutRole assigns roles by position within the statement layout
func (c *Classifier) layoutRole(index int) Role {
	l := c.vocab.vocab.Layout
	labels := len(l.LabelColumns)

	switch {
	case index == 0:
		return Role{Kind: RoleRowLabel}
	case index < labels:
		return Role{Kind: RoleScheduleCode}
	}

	if g, ok := l.groupAt(index); ok {
		return Role{Kind: RoleNumericGroup, Group: g.Name}
	}
	if l.GrandTotal != "" && index == l.Width()-1 {
		return Role{Kind: RoleGrandTotal}
	}
	return Role{Kind: RoleNumericGroup, Group: DefaultGroupName}
}
