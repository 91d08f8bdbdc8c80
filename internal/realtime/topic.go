package realtime

// Topic is a named broadcast scope: a channel, or a two-party direct
// conversation.
type Topic string

// ChannelTopic returns the topic for a channel id.
func ChannelTopic(channelID string) Topic {
	return Topic("channel:" + channelID)
}

// DirectTopic returns the topic for a two-party conversation. The key is
// canonical: both orderings of the participants produce the same topic.
func DirectTopic(userA, userB string) Topic {
	return Topic("dm:" + DirectConversationID(userA, userB))
}

// DirectConversationID builds the canonical persistence key for a direct
// conversation by sorting the two user ids.
func DirectConversationID(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}
