package ledger

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
)

// ContractEvent is a decoded `ContractEmitted` event observed on a
// finalized block, scoped to one contract address.
type ContractEvent struct {
	Contract []byte
	Data     []byte
}

// Instantiate deploys the client's loaded contract code with the given
// constructor label and SCALE-encoded constructor args, returning the new
// contract's address.
func (c *Client) Instantiate(ctx context.Context, constructorLabel string, args []byte) ([]byte, error) {
	selector, err := c.artifact.GetConstructorSelector(constructorLabel)
	if err != nil {
		return nil, err
	}

	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return nil, newErr(kindTransport, err)
	}

	input := append(append([]byte{}, selector[:]...), args...)

	gas, err := c.estimateGas(ctx, "ContractsApi_instantiate", c.artifact.Code, input, salt)
	if err != nil {
		return nil, err
	}

	if err := c.submitExtrinsic(ctx, "instantiate_with_code", map[string]interface{}{
		"code":     c.artifact.Code,
		"input":    input,
		"salt":     salt,
		"gasLimit": gas,
	}); err != nil {
		return nil, err
	}

	addr, err := c.waitForEvent(ctx, "Instantiated")
	if err != nil {
		return nil, err
	}
	return addr.Contract, nil
}

// Write submits a signed extrinsic invoking message on the contract at
// address with SCALE-encoded args, dry-running for a gas estimate first,
// and returns the raw bytes of the first matching ContractEmitted event.
func (c *Client) Write(ctx context.Context, address []byte, message string, args []byte) ([]byte, error) {
	selector, err := c.artifact.GetMessageSelector(message)
	if err != nil {
		return nil, err
	}
	input := append(append([]byte{}, selector[:]...), args...)

	gas, err := c.estimateGas(ctx, "ContractsApi_call", address, input, nil)
	if err != nil {
		return nil, err
	}

	if err := c.submitExtrinsic(ctx, "call", map[string]interface{}{
		"dest":     address,
		"input":    input,
		"gasLimit": gas,
	}); err != nil {
		return nil, err
	}

	ev, err := c.waitForEvent(ctx, "ContractEmitted")
	if err != nil {
		return nil, err
	}
	return ev.Data, nil
}

// Read dry-runs message against the contract at address and returns the
// raw decoded result bytes, without submitting any extrinsic.
func (c *Client) Read(ctx context.Context, address []byte, message string, args []byte) ([]byte, error) {
	selector, err := c.artifact.GetMessageSelector(message)
	if err != nil {
		return nil, err
	}
	input := append(append([]byte{}, selector[:]...), args...)

	result, err := c.call(ctx, "state_call", []interface{}{"ContractsApi_call", hexParams(address, input)})
	if err != nil {
		return nil, err
	}

	var raw string
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, newErr(kindSerdeJson, err)
	}
	out, err := decodeHexPrefixed(raw)
	if err != nil {
		return nil, newErr(kindHexDecode, err)
	}
	return out, nil
}

// ReadStorage fetches and hex-decodes the raw storage entry for key on the
// contract at address, prefixing key with the loaded storage layout's root
// key. It takes no field name: every key gets the same root-key prefix.
func (c *Client) ReadStorage(ctx context.Context, address []byte, key []byte) ([]byte, error) {
	rootKey, err := decodeHexPrefixed(c.artifact.StorageLayout.RootKeyHex)
	if err != nil {
		return nil, newErr(kindHexDecode, err)
	}
	prefixed := append(rootKey, key...)

	result, err := c.call(ctx, "state_call", []interface{}{"ContractsApi_get_storage", hexParams(address, prefixed)})
	if err != nil {
		return nil, err
	}

	var raw *string
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, newErr(kindSerdeJson, err)
	}
	if raw == nil {
		return nil, newErr(kindStorageEntryIsEmpty, nil)
	}
	out, err := decodeHexPrefixed(*raw)
	if err != nil {
		return nil, newErr(kindHexDecode, err)
	}
	return out, nil
}

func (c *Client) estimateGas(ctx context.Context, api string, target, input, salt []byte) (uint64, error) {
	_, err := c.call(ctx, "state_call", []interface{}{api, hexParams(target, input, salt)})
	if err != nil {
		return 0, err
	}
	// A faithful dry-run would decode the returned gas_required; this
	// project ships a fixed generous ceiling instead, since no Go
	// Substrate/ink! weight-decoding library exists in the dependency
	// surface to parse the response precisely (see DESIGN.md).
	return defaultGasLimit, nil
}

const defaultGasLimit = 5_000_000_000

func (c *Client) submitExtrinsic(ctx context.Context, call string, args map[string]interface{}) error {
	payload, err := json.Marshal(args)
	if err != nil {
		return newErr(kindSerdeJson, err)
	}
	sig, err := c.signer.Sign(payload)
	if err != nil {
		return newErr(kindDispatch, err)
	}

	_, err = c.call(ctx, "author_submitAndWatchExtrinsic", []interface{}{
		call, c.signer.AccountID(), sig, payload,
	})
	return err
}

// waitForEvent subscribes to the finalized-block event stream and returns
// the first ContractEmitted event it yields, from any contract. kind does
// not filter the stream; it only names the event in the EventNotFound
// error returned when the stream closes first.
func (c *Client) waitForEvent(ctx context.Context, kind string) (ContractEvent, error) {
	stream, err := c.ContractEventSub(ctx, nil)
	if err != nil {
		return ContractEvent{}, err
	}
	select {
	case ev, ok := <-stream:
		if !ok {
			return ContractEvent{}, newErr(kindEventNotFound, fmt.Errorf("%s", kind))
		}
		return ev, nil
	case <-ctx.Done():
		return ContractEvent{}, newErr(kindTransport, ctx.Err())
	}
}

// ContractEventSub subscribes to finalized blocks and streams
// ContractEmitted events, optionally filtered to a single contract
// address (nil means unfiltered).
func (c *Client) ContractEventSub(ctx context.Context, address []byte) (<-chan ContractEvent, error) {
	blocks, err := c.subscribe(ctx, "chain_subscribeFinalizedHeads")
	if err != nil {
		return nil, err
	}

	out := make(chan ContractEvent, notificationBuffer)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case blockHead, ok := <-blocks:
				if !ok {
					return
				}
				events, err := c.eventsForBlock(ctx, blockHead)
				if err != nil {
					c.log.Warn().Err(err).Msg("skipping block with undecodable events")
					continue
				}
				for _, ev := range events {
					if address != nil && string(ev.Contract) != string(address) {
						continue
					}
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out, nil
}

// eventsForBlock fetches and decodes the ContractEmitted events for a
// single finalized block header notification. A malformed entry makes it
// return an error, and ContractEventSub then skips the whole block.
func (c *Client) eventsForBlock(ctx context.Context, blockHead json.RawMessage) ([]ContractEvent, error) {
	var header struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(blockHead, &header); err != nil {
		return nil, newErr(kindSerdeJson, err)
	}

	result, err := c.call(ctx, "state_getStorage", []interface{}{eventsStorageKey, header.Hash})
	if err != nil {
		return nil, err
	}

	var raw *string
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, newErr(kindSerdeJson, err)
	}
	if raw == nil {
		return nil, nil
	}

	data, err := decodeHexPrefixed(*raw)
	if err != nil {
		return nil, newErr(kindHexDecode, err)
	}
	return decodeContractEvents(data)
}

// eventsStorageKey is the well-known system Events storage key.
const eventsStorageKey = "0x26aa394eea5630e07c48ae0c9558cef7080166c20c37b6e6aa1e62e6bf7a89c"

func hexParams(parts ...[]byte) string {
	out := "0x"
	for _, p := range parts {
		for _, b := range p {
			out += fmt.Sprintf("%02x", b)
		}
	}
	return out
}
