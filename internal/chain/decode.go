package chain

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/lorefolk/heritage-ledger/internal/domain"
)

// eventsABI describes the story and marketplace contract events this ledger mirrors
const eventsABI = `[
	{"type":"event","name":"StoryMinted","inputs":[
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"author","type":"address","indexed":true},
		{"name":"cid","type":"string","indexed":false},
		{"name":"tribe","type":"string","indexed":false}]},
	{"type":"event","name":"StoryPurchased","inputs":[
		{"name":"listingId","type":"uint256","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"seller","type":"address","indexed":false},
		{"name":"buyer","type":"address","indexed":false},
		{"name":"price","type":"uint256","indexed":false},
		{"name":"platformFee","type":"uint256","indexed":false},
		{"name":"royalty","type":"uint256","indexed":false}]},
	{"type":"event","name":"OfferCreated","inputs":[
		{"name":"offerId","type":"uint256","indexed":true},
		{"name":"tokenId","type":"uint256","indexed":true},
		{"name":"offerer","type":"address","indexed":false},
		{"name":"price","type":"uint256","indexed":false}]},
	{"type":"event","name":"BundlePurchased","inputs":[
		{"name":"buyer","type":"address","indexed":true},
		{"name":"tokenIds","type":"uint256[]","indexed":false},
		{"name":"totalPrice","type":"uint256","indexed":false},
		{"name":"discountAmount","type":"uint256","indexed":false},
		{"name":"platformFee","type":"uint256","indexed":false}]}
]`

// decoder turns raw contract logs into domain events
type decoder struct {
	parsed abi.ABI

	storyMintedID     common.Hash
	storyPurchasedID  common.Hash
	offerCreatedID    common.Hash
	bundlePurchasedID common.Hash
}

func newDecoder() (*decoder, error) {
	parsed, err := abi.JSON(strings.NewReader(eventsABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse events abi: %w", err)
	}

	return &decoder{
		parsed:            parsed,
		storyMintedID:     parsed.Events["StoryMinted"].ID,
		storyPurchasedID:  parsed.Events["StoryPurchased"].ID,
		offerCreatedID:    parsed.Events["OfferCreated"].ID,
		bundlePurchasedID: parsed.Events["BundlePurchased"].ID,
	}, nil
}

// topics returns the event signature hashes the log filter subscribes to.
// An empty kinds list selects every event the decoder understands.
func (d *decoder) topics(kinds []domain.EventKind) []common.Hash {
	if len(kinds) == 0 {
		return []common.Hash{
			d.storyMintedID,
			d.storyPurchasedID,
			d.offerCreatedID,
			d.bundlePurchasedID,
		}
	}

	var hashes []common.Hash
	for _, kind := range kinds {
		switch kind {
		case domain.EventKindStoryMinted:
			hashes = append(hashes, d.storyMintedID)
		case domain.EventKindStoryPurchased:
			hashes = append(hashes, d.storyPurchasedID)
		case domain.EventKindOfferCreated:
			hashes = append(hashes, d.offerCreatedID)
		case domain.EventKindBundlePurchased:
			hashes = append(hashes, d.bundlePurchasedID)
		}
	}
	return hashes
}

// Decode turns a contract log into a domain event. Logs with an unknown
// signature return (nil, nil); they are filtered noise, not errors.
func (d *decoder) Decode(vLog types.Log, timestamp time.Time) (*domain.Event, error) {
	if len(vLog.Topics) == 0 {
		return nil, nil
	}

	meta := domain.EventMeta{
		TxHash:      vLog.TxHash.Hex(),
		BlockNumber: vLog.BlockNumber,
		LogIndex:    vLog.Index,
		Timestamp:   timestamp,
	}

	switch vLog.Topics[0] {
	case d.storyMintedID:
		return d.decodeStoryMinted(vLog, meta)
	case d.storyPurchasedID:
		return d.decodeStoryPurchased(vLog, meta)
	case d.offerCreatedID:
		return d.decodeOfferCreated(vLog, meta)
	case d.bundlePurchasedID:
		return d.decodeBundlePurchased(vLog, meta)
	default:
		return nil, nil
	}
}

func (d *decoder) decodeStoryMinted(vLog types.Log, meta domain.EventMeta) (*domain.Event, error) {
	if len(vLog.Topics) != 3 {
		return nil, fmt.Errorf("StoryMinted: expected 3 topics, got %d", len(vLog.Topics))
	}

	values, err := d.parsed.Events["StoryMinted"].Inputs.NonIndexed().Unpack(vLog.Data)
	if err != nil {
		return nil, fmt.Errorf("StoryMinted: failed to unpack data: %w", err)
	}

	cid, ok := values[0].(string)
	if !ok {
		return nil, fmt.Errorf("StoryMinted: cid is not a string")
	}
	tribe, ok := values[1].(string)
	if !ok {
		return nil, fmt.Errorf("StoryMinted: tribe is not a string")
	}

	return &domain.Event{
		Kind: domain.EventKindStoryMinted,
		Meta: meta,
		StoryMinted: &domain.StoryMinted{
			TokenID: topicUint256(vLog.Topics[1]),
			Author:  topicAddress(vLog.Topics[2]),
			CID:     cid,
			Tribe:   tribe,
		},
	}, nil
}

func (d *decoder) decodeStoryPurchased(vLog types.Log, meta domain.EventMeta) (*domain.Event, error) {
	if len(vLog.Topics) != 3 {
		return nil, fmt.Errorf("StoryPurchased: expected 3 topics, got %d", len(vLog.Topics))
	}

	values, err := d.parsed.Events["StoryPurchased"].Inputs.NonIndexed().Unpack(vLog.Data)
	if err != nil {
		return nil, fmt.Errorf("StoryPurchased: failed to unpack data: %w", err)
	}

	seller, sellerOK := values[0].(common.Address)
	buyer, buyerOK := values[1].(common.Address)
	price, priceOK := values[2].(*big.Int)
	platformFee, feeOK := values[3].(*big.Int)
	royalty, royaltyOK := values[4].(*big.Int)
	if !sellerOK || !buyerOK || !priceOK || !feeOK || !royaltyOK {
		return nil, fmt.Errorf("StoryPurchased: unexpected data layout")
	}

	return &domain.Event{
		Kind: domain.EventKindStoryPurchased,
		Meta: meta,
		StoryPurchased: &domain.StoryPurchased{
			ListingID:        topicUint256(vLog.Topics[1]),
			TokenID:          topicUint256(vLog.Topics[2]),
			Seller:           strings.ToLower(seller.Hex()),
			Buyer:            strings.ToLower(buyer.Hex()),
			PriceMinorUnits:  price.String(),
			PlatformFeeMinor: platformFee.String(),
			RoyaltyMinor:     royalty.String(),
		},
	}, nil
}

func (d *decoder) decodeOfferCreated(vLog types.Log, meta domain.EventMeta) (*domain.Event, error) {
	if len(vLog.Topics) != 3 {
		return nil, fmt.Errorf("OfferCreated: expected 3 topics, got %d", len(vLog.Topics))
	}

	values, err := d.parsed.Events["OfferCreated"].Inputs.NonIndexed().Unpack(vLog.Data)
	if err != nil {
		return nil, fmt.Errorf("OfferCreated: failed to unpack data: %w", err)
	}

	offerer, offererOK := values[0].(common.Address)
	price, priceOK := values[1].(*big.Int)
	if !offererOK || !priceOK {
		return nil, fmt.Errorf("OfferCreated: unexpected data layout")
	}

	return &domain.Event{
		Kind: domain.EventKindOfferCreated,
		Meta: meta,
		OfferCreated: &domain.OfferCreated{
			OfferID:         topicUint256(vLog.Topics[1]),
			TokenID:         topicUint256(vLog.Topics[2]),
			Offerer:         strings.ToLower(offerer.Hex()),
			PriceMinorUnits: price.String(),
		},
	}, nil
}

func (d *decoder) decodeBundlePurchased(vLog types.Log, meta domain.EventMeta) (*domain.Event, error) {
	if len(vLog.Topics) != 2 {
		return nil, fmt.Errorf("BundlePurchased: expected 2 topics, got %d", len(vLog.Topics))
	}

	values, err := d.parsed.Events["BundlePurchased"].Inputs.NonIndexed().Unpack(vLog.Data)
	if err != nil {
		return nil, fmt.Errorf("BundlePurchased: failed to unpack data: %w", err)
	}

	rawTokenIDs, idsOK := values[0].([]*big.Int)
	totalPrice, totalOK := values[1].(*big.Int)
	discount, discountOK := values[2].(*big.Int)
	platformFee, feeOK := values[3].(*big.Int)
	if !idsOK || !totalOK || !discountOK || !feeOK {
		return nil, fmt.Errorf("BundlePurchased: unexpected data layout")
	}
	if len(rawTokenIDs) == 0 {
		return nil, fmt.Errorf("BundlePurchased: empty token list")
	}

	tokenIDs := make([]string, len(rawTokenIDs))
	for i, id := range rawTokenIDs {
		tokenIDs[i] = id.String()
	}

	return &domain.Event{
		Kind: domain.EventKindBundlePurchased,
		Meta: meta,
		BundlePurchased: &domain.BundlePurchased{
			Buyer:                topicAddress(vLog.Topics[1]),
			TokenIDs:             tokenIDs,
			TotalPriceMinorUnits: totalPrice.String(),
			DiscountMinorUnits:   discount.String(),
			PlatformFeeMinor:     platformFee.String(),
		},
	}, nil
}

// topicUint256 reads an indexed uint256 topic as a decimal string
func topicUint256(topic common.Hash) string {
	return new(big.Int).SetBytes(topic.Bytes()).String()
}

// topicAddress reads an indexed address topic as a lowercase hex address
func topicAddress(topic common.Hash) string {
	return strings.ToLower(common.BytesToAddress(topic.Bytes()).Hex())
}
