// Package layout turns declared variables into bit slots.
//
// The kind width table is a protocol constant: the sender that packs values
// and the receiver that unpacks them must agree on it, otherwise every slot
// after the first disagreement decodes from the wrong bit offset.
package layout
