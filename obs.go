package main

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
)

const mediaActionRestart = "OBS_WEBSOCKET_MEDIA_INPUT_ACTION_RESTART"

// obs-websocket v5 opcodes.
const (
	opHello           = 0
	opIdentify        = 1
	opIdentified      = 2
	opRequest         = 6
	opRequestResponse = 7
)

type obsEnvelope struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

type obsHello struct {
	RPCVersion     int `json:"rpcVersion"`
	Authentication *struct {
		Challenge string `json:"challenge"`
		Salt      string `json:"salt"`
	} `json:"authentication"`
}

type obsRequest struct {
	RequestType string      `json:"requestType"`
	RequestID   string      `json:"requestId"`
	RequestData interface{} `json:"requestData,omitempty"`
}

type obsResponse struct {
	RequestType   string `json:"requestType"`
	RequestID     string `json:"requestId"`
	RequestStatus struct {
		Result  bool   `json:"result"`
		Code    int    `json:"code"`
		Comment string `json:"comment"`
	} `json:"requestStatus"`
	ResponseData json.RawMessage `json:"responseData"`
}

// OBSClient is a shared, mutex-protected obs-websocket connection with
// reconnect-on-stale retry. All requests are issued sequentially.
type OBSClient struct {
	addr     string
	password string
	mu       sync.Mutex
	conn     *websocket.Conn
	seq      int
}

func NewOBSClient(host, port, password string) *OBSClient {
	return &OBSClient{
		addr:     net.JoinHostPort(host, port),
		password: password,
	}
}

// Connect dials and identifies eagerly so startup can report a bad
// address/password immediately. Later requests redial on their own.
func (c *OBSClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.getConn()
	return err
}

func (c *OBSClient) getConn() (*websocket.Conn, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+c.addr, nil)
	if err != nil {
		return nil, err
	}

	var env obsEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read hello: %w", err)
	}
	if env.Op != opHello {
		conn.Close()
		return nil, fmt.Errorf("expected hello, got op %d", env.Op)
	}
	var hello obsHello
	if err := json.Unmarshal(env.D, &hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("parse hello: %w", err)
	}

	identify := map[string]interface{}{
		"rpcVersion": 1,
		// no event subscriptions: this client only issues requests
		"eventSubscriptions": 0,
	}
	if hello.Authentication != nil {
		identify["authentication"] = obsAuthToken(c.password,
			hello.Authentication.Salt, hello.Authentication.Challenge)
	}
	d, _ := json.Marshal(identify)
	if err := conn.WriteJSON(obsEnvelope{Op: opIdentify, D: d}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send identify: %w", err)
	}

	if err := conn.ReadJSON(&env); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read identified: %w", err)
	}
	if env.Op != opIdentified {
		conn.Close()
		return nil, fmt.Errorf("identify rejected (op %d), check OBS_PASSWORD", env.Op)
	}

	c.conn = conn
	return conn, nil
}

// obsAuthToken computes the v5 challenge response:
// base64(sha256(base64(sha256(password+salt)) + challenge)).
func obsAuthToken(password, salt, challenge string) string {
	secret := sha256.Sum256([]byte(password + salt))
	secretB64 := base64.StdEncoding.EncodeToString(secret[:])
	auth := sha256.Sum256([]byte(secretB64 + challenge))
	return base64.StdEncoding.EncodeToString(auth[:])
}

// request issues one obs-websocket request, redialing once on a stale
// connection, and unmarshals responseData into out when out is non-nil.
func (c *OBSClient) request(reqType string, data interface{}, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.roundTrip(reqType, data)
	if err != nil {
		// Connection may be stale; close and retry once
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		resp, err = c.roundTrip(reqType, data)
		if err != nil {
			if c.conn != nil {
				c.conn.Close()
				c.conn = nil
			}
			return fmt.Errorf("obs %s: %w", reqType, err)
		}
	}

	if !resp.RequestStatus.Result {
		return fmt.Errorf("obs %s: code %d %s", reqType, resp.RequestStatus.Code, resp.RequestStatus.Comment)
	}
	if out != nil && len(resp.ResponseData) > 0 {
		if err := json.Unmarshal(resp.ResponseData, out); err != nil {
			return fmt.Errorf("obs %s response: %w", reqType, err)
		}
	}
	return nil
}

func (c *OBSClient) roundTrip(reqType string, data interface{}) (*obsResponse, error) {
	conn, err := c.getConn()
	if err != nil {
		return nil, err
	}

	c.seq++
	id := strconv.Itoa(c.seq)
	d, err := json.Marshal(obsRequest{RequestType: reqType, RequestID: id, RequestData: data})
	if err != nil {
		return nil, err
	}
	if err := conn.WriteJSON(obsEnvelope{Op: opRequest, D: d}); err != nil {
		return nil, err
	}

	for {
		var env obsEnvelope
		if err := conn.ReadJSON(&env); err != nil {
			return nil, err
		}
		if env.Op != opRequestResponse {
			continue
		}
		var resp obsResponse
		if err := json.Unmarshal(env.D, &resp); err != nil {
			return nil, err
		}
		if resp.RequestID != id {
			continue
		}
		return &resp, nil
	}
}

func (c *OBSClient) SceneList() ([]string, error) {
	var out struct {
		Scenes []struct {
			SceneName string `json:"sceneName"`
		} `json:"scenes"`
	}
	if err := c.request("GetSceneList", nil, &out); err != nil {
		return nil, err
	}
	names := make([]string, len(out.Scenes))
	for i, s := range out.Scenes {
		names[i] = s.SceneName
	}
	return names, nil
}

func (c *OBSClient) CurrentScene() (string, error) {
	var out struct {
		CurrentProgramSceneName string `json:"currentProgramSceneName"`
	}
	if err := c.request("GetCurrentProgramScene", nil, &out); err != nil {
		return "", err
	}
	return out.CurrentProgramSceneName, nil
}

func (c *OBSClient) SetCurrentScene(scene string) error {
	return c.request("SetCurrentProgramScene", map[string]interface{}{
		"sceneName": scene,
	}, nil)
}

func (c *OBSClient) SceneItemID(scene, source string) (int, error) {
	var out struct {
		SceneItemID int `json:"sceneItemId"`
	}
	err := c.request("GetSceneItemId", map[string]interface{}{
		"sceneName":  scene,
		"sourceName": source,
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.SceneItemID, nil
}

func (c *OBSClient) SetSceneItemEnabled(scene string, itemID int, enabled bool) error {
	return c.request("SetSceneItemEnabled", map[string]interface{}{
		"sceneName":        scene,
		"sceneItemId":      itemID,
		"sceneItemEnabled": enabled,
	}, nil)
}

func (c *OBSClient) SetSceneItemTransform(scene string, itemID int, t Transform) error {
	transform := map[string]interface{}{}
	if t.PositionX != nil {
		transform["positionX"] = *t.PositionX
	}
	if t.PositionY != nil {
		transform["positionY"] = *t.PositionY
	}
	if t.ScaleX != nil {
		transform["scaleX"] = *t.ScaleX
	}
	if t.ScaleY != nil {
		transform["scaleY"] = *t.ScaleY
	}
	return c.request("SetSceneItemTransform", map[string]interface{}{
		"sceneName":          scene,
		"sceneItemId":        itemID,
		"sceneItemTransform": transform,
	}, nil)
}

func (c *OBSClient) SetText(source, text string) error {
	return c.request("SetInputSettings", map[string]interface{}{
		"inputName":     source,
		"inputSettings": map[string]interface{}{"text": text},
		"overlay":       true,
	}, nil)
}

func (c *OBSClient) SetImageFile(source, path string) error {
	return c.request("SetInputSettings", map[string]interface{}{
		"inputName":     source,
		"inputSettings": map[string]interface{}{"file": path},
		"overlay":       true,
	}, nil)
}

func (c *OBSClient) InputList() ([]string, error) {
	var out struct {
		Inputs []struct {
			InputName string `json:"inputName"`
		} `json:"inputs"`
	}
	if err := c.request("GetInputList", nil, &out); err != nil {
		return nil, err
	}
	names := make([]string, len(out.Inputs))
	for i, in := range out.Inputs {
		names[i] = in.InputName
	}
	return names, nil
}

func (c *OBSClient) FilterList(source string) ([]string, error) {
	var out struct {
		Filters []struct {
			FilterName string `json:"filterName"`
		} `json:"filters"`
	}
	err := c.request("GetSourceFilterList", map[string]interface{}{
		"sourceName": source,
	}, &out)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(out.Filters))
	for i, f := range out.Filters {
		names[i] = f.FilterName
	}
	return names, nil
}

func (c *OBSClient) SetFilterEnabled(source, filter string, enabled bool) error {
	return c.request("SetSourceFilterEnabled", map[string]interface{}{
		"sourceName":    source,
		"filterName":    filter,
		"filterEnabled": enabled,
	}, nil)
}

func (c *OBSClient) TriggerMediaAction(source, action string) error {
	return c.request("TriggerMediaInputAction", map[string]interface{}{
		"inputName":   source,
		"mediaAction": action,
	}, nil)
}

func (c *OBSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
