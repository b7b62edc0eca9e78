package stxtconverter

// WalkAction tells Walk whether to visit the children of a group.
type WalkAction int

const (
	Descend WalkAction = iota
	Skip
)

/**
 * Visitor receives the nodes of a document in order.
 * GroupEnd is called for every group, also for the ones skipped by Group.
 */
type Visitor interface {
	Group(group *Group) (WalkAction, error)
	GroupEnd(group *Group) error
	Command(command *Command) error
	Text(text *Text) error
}

// Walk visits root and its descendants depth first. The first error returned
// by the visitor stops the walk and is returned as is.
func Walk(root *Group, v Visitor) error {
	if root == nil {
		return nil
	}
	return walkGroup(root, v)
}

func walkGroup(group *Group, v Visitor) error {
	action, err := v.Group(group)
	if err != nil {
		return err
	}

	if action == Descend {
		for _, child := range group.children {
			switch c := child.(type) {
			case *Group:
				err = walkGroup(c, v)
			case *Command:
				err = v.Command(c)
			case *Text:
				err = v.Text(c)
			}
			if err != nil {
				return err
			}
		}
	}

	return v.GroupEnd(group)
}
