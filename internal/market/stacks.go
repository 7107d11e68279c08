package market

// Stack is a discrete pile of item units handed back to a player, sized by
// the item's per-stack unit limit.
type Stack struct {
	Item  []byte `json:"item"`
	Units int    `json:"units"`
}

// SplitStacks splits stock units of an item into full stacks of maxStack
// units plus one remainder stack when the stock does not divide evenly.
func SplitStacks(payload []byte, stock, maxStack int) []Stack {
	if stock <= 0 {
		return nil
	}
	if maxStack <= 0 {
		maxStack = 1
	}

	stacks := make([]Stack, 0, stock/maxStack+1)
	for i := 0; i < stock/maxStack; i++ {
		stacks = append(stacks, Stack{Item: payload, Units: maxStack})
	}
	if rem := stock % maxStack; rem != 0 {
		stacks = append(stacks, Stack{Item: payload, Units: rem})
	}
	return stacks
}
