package http

import (
	"encoding/json"

	"github.com/UzumakiODZ/backEndChat/internal/core"
	"github.com/UzumakiODZ/backEndChat/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeAuthenticate:
		var data proto.AuthenticateData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.Token == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "token is required"}, nil
		}
		return &core.Command{
			Kind:  core.CommandAuthenticate,
			Token: data.Token,
		}, nil, nil
	case proto.InboundTypeJoin:
		var data proto.JoinData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:   core.CommandJoin,
			UserID: data.UserID,
		}, nil, nil
	case proto.InboundTypeSendMessage:
		var data proto.SendMessageData
		if err := json.Unmarshal(inbound.Data, &data); err != nil {
			return nil, nil, err
		}
		if data.ReceiverID == 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "receiverId is required"}, nil
		}
		return &core.Command{
			Kind:       core.CommandSendMessage,
			ReceiverID: data.ReceiverID,
			Content:    data.Content,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessageReceived:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventReceiveMessage,
			Data:  messagePayload(event.Message),
		}
	case core.EventAuthenticated:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventAuthenticated,
			Data:  proto.AckPayload{UserID: event.UserID},
		}
	case core.EventJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventJoined,
			Data:  proto.AckPayload{UserID: event.UserID},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
