package ledger

import "github.com/oac1771/bruja/internal/ledger/scale"

// decodeContractEvents parses a raw system-events storage blob into the
// ContractEmitted entries it contains.
//
// This is a deliberately narrow decoder: the full system Event enum has
// dozens of pallet-specific variants, and this project only decodes the
// Contracts pallet's ContractEmitted{contract, data} variant, whose two
// fields are compact-length-prefixed vectors read with the shared
// scale.DecodeBytes helper. Other variants are not decoded, so their
// length is unknown: decoding stops at the first entry that is not
// ContractEmitted, and the block's events after it are not returned. A
// malformed ContractEmitted entry ends decoding with an error.
func decodeContractEvents(raw []byte) ([]ContractEvent, error) {
	n, consumed, err := scale.DecodeCompactLen(raw)
	if err != nil {
		return nil, newErr(kindDecode, err)
	}
	raw = raw[consumed:]

	events := make([]ContractEvent, 0, n)
	for i := 0; i < n && len(raw) > 0; i++ {
		if len(raw) < 2 {
			break
		}
		palletIdx, eventIdx := raw[0], raw[1]
		raw = raw[2:]

		if palletIdx != contractsPalletIndex || eventIdx != contractEmittedEventIndex {
			// Unknown shape: nothing left to safely resync on, so stop
			// rather than misparse the remainder of the block.
			break
		}

		contract, consumedContract, err := scale.DecodeBytes(raw)
		if err != nil {
			return events, newErr(kindDecode, err)
		}
		raw = raw[consumedContract:]

		data, consumedData, err := scale.DecodeBytes(raw)
		if err != nil {
			return events, newErr(kindDecode, err)
		}
		raw = raw[consumedData:]

		events = append(events, ContractEvent{Contract: contract, Data: data})
	}

	return events, nil
}

// contractsPalletIndex and contractEmittedEventIndex are the runtime's
// fixed pallet/event indices for pallet-contracts' ContractEmitted event,
// as published in the chain's metadata.
const (
	contractsPalletIndex      = 8
	contractEmittedEventIndex = 2
)
