package domain

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidScope indicates a scope the bot does not serve.
var ErrInvalidScope = errors.New("scope not supported")

// ChatType is the kind of chat a command was invoked from.
type ChatType string

const (
	ChatDirect  ChatType = "direct"
	ChatGroup   ChatType = "group"
	ChatChannel ChatType = "channel"
)

// Chat identifies a chat. For channels ID is the parent community.
type Chat struct {
	Type      ChatType `json:"type"`
	ID        string   `json:"id"`
	ChannelID string   `json:"channelId,omitempty"`
}

// Scope describes where a command was invoked: either inside a chat, or at community level.
type Scope struct {
	Chat        *Chat  `json:"chat,omitempty"`
	CommunityID string `json:"communityId,omitempty"`
	MessageID   string `json:"messageId,omitempty"`
}

// ChatScope returns a chat-level scope.
func ChatScope(chat Chat) Scope {
	return Scope{Chat: &chat}
}

// CommunityScope returns a community-level scope.
func CommunityScope(communityID string) Scope {
	return Scope{CommunityID: communityID}
}

// IsDirect reports whether the scope is a direct chat.
func (s Scope) IsDirect() bool {
	return s.Chat != nil && s.Chat.Type == ChatDirect
}

// ConfigKeyKind tags a ConfigKey variant. The numeric values are part of the stored key encoding.
type ConfigKeyKind uint8

const (
	KeyDirect    ConfigKeyKind = 1
	KeyGroup     ConfigKeyKind = 2
	KeyChannel   ConfigKeyKind = 3
	KeyCommunity ConfigKeyKind = 4
)

func (k ConfigKeyKind) String() string {
	switch k {
	case KeyDirect:
		return "direct"
	case KeyGroup:
		return "group"
	case KeyChannel:
		return "channel"
	case KeyCommunity:
		return "community"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ConfigKey identifies the chat scope that owns a configuration.
type ConfigKey struct {
	Kind      ConfigKeyKind `json:"kind"`
	ID        string        `json:"id"`
	ChannelID string        `json:"channelId,omitempty"`
}

func (k ConfigKey) String() string {
	if k.Kind == KeyChannel {
		return fmt.Sprintf("%s:%s/%s", k.Kind, k.ID, k.ChannelID)
	}
	return fmt.Sprintf("%s:%s", k.Kind, k.ID)
}

// MarshalBinary encodes the key as kind byte, then uvarint-length-prefixed ID and ChannelID.
func (k ConfigKey) MarshalBinary() ([]byte, error) {
	if k.Kind < KeyDirect || k.Kind > KeyCommunity {
		return nil, fmt.Errorf("encoding config key: unknown kind %d", k.Kind)
	}
	buf := make([]byte, 0, 1+2*binary.MaxVarintLen64+len(k.ID)+len(k.ChannelID))
	buf = append(buf, byte(k.Kind))
	buf = binary.AppendUvarint(buf, uint64(len(k.ID)))
	buf = append(buf, k.ID...)
	buf = binary.AppendUvarint(buf, uint64(len(k.ChannelID)))
	buf = append(buf, k.ChannelID...)
	return buf, nil
}

// UnmarshalBinary decodes a key produced by MarshalBinary.
func (k *ConfigKey) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("decoding config key: empty input")
	}
	kind := ConfigKeyKind(data[0])
	rest := data[1:]

	id, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return fmt.Errorf("decoding config key id: %w", err)
	}
	channel, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return fmt.Errorf("decoding config key channel: %w", err)
	}
	if len(rest) != 0 {
		return fmt.Errorf("decoding config key: %d trailing bytes", len(rest))
	}

	*k = ConfigKey{Kind: kind, ID: id, ChannelID: channel}
	return nil
}

func readLengthPrefixed(b []byte) (string, []byte, error) {
	n, size := binary.Uvarint(b)
	if size <= 0 {
		return "", nil, fmt.Errorf("bad length prefix")
	}
	b = b[size:]
	if uint64(len(b)) < n {
		return "", nil, fmt.Errorf("length %d exceeds remaining %d bytes", n, len(b))
	}
	return string(b[:n]), b[n:], nil
}

// DirectChatPolicy decides whether a bot serves direct chats.
type DirectChatPolicy string

const (
	DirectChatsAllow  DirectChatPolicy = "allow"
	DirectChatsReject DirectChatPolicy = "reject"
)

// ParseDirectChatPolicy accepts "allow" or "reject".
func ParseDirectChatPolicy(s string) (DirectChatPolicy, error) {
	switch p := DirectChatPolicy(s); p {
	case DirectChatsAllow, DirectChatsReject:
		return p, nil
	default:
		return "", fmt.Errorf("invalid direct chat policy: %q", s)
	}
}

// DeriveConfigKey maps a scope to the key its configuration is stored under.
// Channels share their parent community's key. Direct chats are keyed by chat id,
// or rejected with ErrInvalidScope when the policy says so.
func DeriveConfigKey(scope Scope, policy DirectChatPolicy) (ConfigKey, error) {
	if scope.Chat == nil {
		if scope.CommunityID == "" {
			return ConfigKey{}, fmt.Errorf("%w: empty scope", ErrInvalidScope)
		}
		return ConfigKey{Kind: KeyCommunity, ID: scope.CommunityID}, nil
	}

	chat := scope.Chat
	switch chat.Type {
	case ChatChannel:
		return ConfigKey{Kind: KeyCommunity, ID: chat.ID}, nil
	case ChatGroup:
		return ConfigKey{Kind: KeyGroup, ID: chat.ID}, nil
	case ChatDirect:
		if policy == DirectChatsReject {
			return ConfigKey{}, fmt.Errorf("%w: direct chats", ErrInvalidScope)
		}
		return ConfigKey{Kind: KeyDirect, ID: chat.ID}, nil
	default:
		return ConfigKey{}, fmt.Errorf("%w: unknown chat type %q", ErrInvalidScope, chat.Type)
	}
}
